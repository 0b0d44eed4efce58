package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heartmarshall/atelier-bot/internal/adapter/icon"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

type messageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error
}

// Notifier tells the atelier about committed orders.
type Notifier struct {
	sender    messageSender
	atelierID int64
	log       *slog.Logger
}

// NewNotifier creates a Notifier that messages atelierID.
func NewNotifier(sender messageSender, atelierID int64, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		atelierID: atelierID,
		log:       logger.With("adapter", "notifier"),
	}
}

// NotifyOrder sends the order summary, as a photo caption when the artwork
// has an icon. An unreadable icon falls back to plain text.
func (n *Notifier) NotifyOrder(ctx context.Context, notice domain.OrderNotice) error {
	text := FormatOrderNotice(notice)

	if notice.ArtworkIcon != nil {
		photo, err := icon.Decode(*notice.ArtworkIcon)
		if err == nil {
			return n.sender.SendPhoto(ctx, n.atelierID, photo, text)
		}
		n.log.WarnContext(ctx, "artwork icon unreadable, sending text",
			slog.Int64("order_id", notice.Order.ID),
			slog.String("error", err.Error()),
		)
	}

	return n.sender.SendMessage(ctx, n.atelierID, text, nil)
}

// FormatOrderNotice renders the atelier-facing order summary.
func FormatOrderNotice(notice domain.OrderNotice) string {
	artist := "id " + strconv.FormatInt(notice.ArtistID, 10)
	if notice.ArtistName != "" {
		artist = "@" + notice.ArtistName
	}

	var b strings.Builder
	b.WriteString("🖨 New print order\n\n")
	fmt.Fprintf(&b, "👤 Artist: %s\n", artist)
	fmt.Fprintf(&b, "🎨 Artwork: %s\n", notice.Order.ArtworkName)
	fmt.Fprintf(&b, "📄 Paper: %s\n", notice.Order.PaperName)
	fmt.Fprintf(&b, "🔢 Copies: %d", notice.Order.Copies)
	return b.String()
}
