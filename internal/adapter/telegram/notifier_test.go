package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/atelier-bot/internal/adapter/icon"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

type sendMessageCall struct {
	ChatID int64
	Text   string
}

type sendPhotoCall struct {
	ChatID  int64
	Photo   []byte
	Caption string
}

type messageSenderMock struct {
	SendMessageFunc func(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error
	SendPhotoFunc   func(ctx context.Context, chatID int64, photo []byte, caption string) error

	mu       sync.Mutex
	messages []sendMessageCall
	photos   []sendPhotoCall
}

func (m *messageSenderMock) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	m.mu.Lock()
	m.messages = append(m.messages, sendMessageCall{ChatID: chatID, Text: text})
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text, keyboard)
	}
	return nil
}

func (m *messageSenderMock) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	m.mu.Lock()
	m.photos = append(m.photos, sendPhotoCall{ChatID: chatID, Photo: photo, Caption: caption})
	m.mu.Unlock()
	if m.SendPhotoFunc != nil {
		return m.SendPhotoFunc(ctx, chatID, photo, caption)
	}
	return nil
}

func sampleNotice() domain.OrderNotice {
	return domain.OrderNotice{
		Order: domain.Order{
			ID: 3, OwnerID: 11, ArtworkName: "Lotus", PaperName: "A4", Copies: 3, Status: domain.OrderStatusNew,
		},
		ArtistID:   11,
		ArtistName: "mira",
	}
}

func TestFormatOrderNotice(t *testing.T) {
	t.Parallel()

	got := FormatOrderNotice(sampleNotice())
	assert.Equal(t, "🖨 New print order\n\n👤 Artist: @mira\n🎨 Artwork: Lotus\n📄 Paper: A4\n🔢 Copies: 3", got)
}

func TestFormatOrderNotice_NoHandle(t *testing.T) {
	t.Parallel()

	n := sampleNotice()
	n.ArtistName = ""
	assert.Contains(t, FormatOrderNotice(n), "👤 Artist: id 11\n")
}

func TestNotifier_TextWithoutIcon(t *testing.T) {
	t.Parallel()
	sender := &messageSenderMock{}

	err := NewNotifier(sender, 144, newTestLogger()).NotifyOrder(context.Background(), sampleNotice())
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	assert.Empty(t, sender.photos)
	assert.Equal(t, int64(144), sender.messages[0].ChatID)
}

func TestNotifier_PhotoWithIcon(t *testing.T) {
	t.Parallel()
	sender := &messageSenderMock{}

	n := sampleNotice()
	ic := icon.DataURIPrefix + "/9j/"
	n.ArtworkIcon = &ic

	err := NewNotifier(sender, 144, newTestLogger()).NotifyOrder(context.Background(), n)
	require.NoError(t, err)

	require.Len(t, sender.photos, 1)
	assert.Empty(t, sender.messages)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, sender.photos[0].Photo)
	assert.Equal(t, FormatOrderNotice(n), sender.photos[0].Caption)
}

func TestNotifier_BrokenIconFallsBackToText(t *testing.T) {
	t.Parallel()
	sender := &messageSenderMock{}

	n := sampleNotice()
	broken := "not-a-data-uri"
	n.ArtworkIcon = &broken

	err := NewNotifier(sender, 144, newTestLogger()).NotifyOrder(context.Background(), n)
	require.NoError(t, err)
	assert.Len(t, sender.messages, 1)
	assert.Empty(t, sender.photos)
}

func TestNotifier_PropagatesSendError(t *testing.T) {
	t.Parallel()
	sendErr := errors.New("blocked")
	sender := &messageSenderMock{
		SendMessageFunc: func(context.Context, int64, string, *InlineKeyboardMarkup) error { return sendErr },
	}

	err := NewNotifier(sender, 144, newTestLogger()).NotifyOrder(context.Background(), sampleNotice())
	assert.ErrorIs(t, err, sendErr)
}
