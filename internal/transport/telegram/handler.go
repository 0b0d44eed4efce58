// Package telegram feeds Bot API updates into the bot router, either by long
// polling or through a webhook, and delivers the replies.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	tgapi "github.com/heartmarshall/atelier-bot/internal/adapter/telegram"
	"github.com/heartmarshall/atelier-bot/internal/bot"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

type botAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *tgapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DownloadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, ev bot.Event) bot.Reply
}

type rateLimiter interface {
	Allow(userID int64) bool
}

const (
	msgImageTooLarge  = "The image is too large."
	msgImageFailed    = "Could not download the image, please send it again."
	msgUnsupportedMsg = "Please send text, a photo or use the buttons."
)

// Handler turns one update into a bot event, dispatches it and sends the
// reply. Updates are handled one at a time.
type Handler struct {
	api            botAPI
	router         dispatcher
	limiter        rateLimiter
	maxUploadBytes int64
	log            *slog.Logger

	mu sync.Mutex
}

// NewHandler creates a Handler. limiter may be nil.
func NewHandler(log *slog.Logger, api botAPI, router dispatcher, limiter rateLimiter, maxUploadBytes int64) *Handler {
	return &Handler{
		api:            api,
		router:         router,
		limiter:        limiter,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "telegram_intake"),
	}
}

// inbound is an update reduced to what the router needs.
type inbound struct {
	userID     int64
	username   string
	chatID     int64
	callbackID string
}

// Handle processes a single update. Delivery errors are logged, never
// returned: an update is consumed once it has been dispatched.
func (h *Handler) Handle(ctx context.Context, upd tgapi.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	in, ok := inboundOf(upd)
	if !ok {
		h.log.DebugContext(ctx, "update ignored", slog.Int64("update_id", upd.UpdateID))
		return
	}

	ctx = ctxutil.WithUserID(ctx, in.userID)
	ctx = ctxutil.WithUsername(ctx, in.username)
	ctx = ctxutil.WithRequestID(ctx, uuid.New().String())

	if h.limiter != nil && !h.limiter.Allow(in.userID) {
		h.log.WarnContext(ctx, "update rate limited", slog.Int64("user_id", in.userID))
		h.deliver(ctx, in, bot.RateLimited())
		return
	}

	ev, reply, ok := h.event(ctx, upd)
	if ok {
		reply = h.router.Dispatch(ctx, ev)
	}
	h.deliver(ctx, in, reply)
}

func inboundOf(upd tgapi.Update) (inbound, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		chatID := cq.From.ID
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
		}
		return inbound{userID: cq.From.ID, username: cq.From.Username, chatID: chatID, callbackID: cq.ID}, true
	case upd.Message != nil && upd.Message.From != nil && !upd.Message.From.IsBot:
		m := upd.Message
		return inbound{userID: m.From.ID, username: m.From.Username, chatID: m.Chat.ID}, true
	}
	return inbound{}, false
}

// event decodes the update. When it cannot be decoded, the returned reply is
// sent instead of dispatching.
func (h *Handler) event(ctx context.Context, upd tgapi.Update) (bot.Event, bot.Reply, bool) {
	if upd.CallbackQuery != nil {
		return bot.DecodeAction(upd.CallbackQuery.Data), bot.Reply{}, true
	}

	m := upd.Message
	fileID := imageFileID(m)
	if fileID == "" {
		text := m.Text
		if text == "" {
			text = m.Caption
		}
		if strings.TrimSpace(text) == "" {
			return nil, bot.Reply{Text: msgUnsupportedMsg}, false
		}
		return bot.TextEvent(text), bot.Reply{}, true
	}

	data, err := h.api.DownloadFile(ctx, fileID, h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, tgapi.ErrFileTooLarge) {
			return nil, bot.Reply{Text: msgImageTooLarge}, false
		}
		h.log.ErrorContext(ctx, "image download failed",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return nil, bot.Reply{Text: msgImageFailed}, false
	}
	return bot.Image{Data: data}, bot.Reply{}, true
}

// imageFileID picks the largest photo size, or an image sent as a document.
func imageFileID(m *tgapi.Message) string {
	if n := len(m.Photo); n > 0 {
		return m.Photo[n-1].FileID
	}
	if m.Document != nil && strings.HasPrefix(m.Document.MimeType, "image/") {
		return m.Document.FileID
	}
	return ""
}

func (h *Handler) deliver(ctx context.Context, in inbound, reply bot.Reply) {
	text := reply.Text
	if in.callbackID != "" {
		if err := h.api.AnswerCallback(ctx, in.callbackID, reply.Notice); err != nil {
			h.log.WarnContext(ctx, "answer callback failed", slog.String("error", err.Error()))
		}
	} else if text == "" {
		text = reply.Notice
	}
	if text == "" {
		return
	}

	if err := h.api.SendMessage(ctx, in.chatID, text, keyboard(reply.Buttons)); err != nil {
		h.log.ErrorContext(ctx, "send reply failed",
			slog.Int64("user_id", in.userID),
			slog.String("error", err.Error()),
		)
	}
}

func keyboard(rows [][]bot.Button) *tgapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := &tgapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgapi.InlineKeyboardButton, len(rows))}
	for i, row := range rows {
		kb.InlineKeyboard[i] = make([]tgapi.InlineKeyboardButton, len(row))
		for j, b := range row {
			kb.InlineKeyboard[i][j] = tgapi.InlineKeyboardButton{Text: b.Label, CallbackData: b.Token}
		}
	}
	return kb
}
