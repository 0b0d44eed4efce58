package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	tgapi "github.com/heartmarshall/atelier-bot/internal/adapter/telegram"
)

// maxUpdateBytes bounds a webhook body; updates carry file ids, not files.
const maxUpdateBytes = 1 << 20

// WebhookPath is the route pattern the webhook is mounted on.
const WebhookPath = "POST /webhook/{secret}"

// Webhook receives updates pushed by the Bot API.
type Webhook struct {
	handler *Handler
	secret  string
	log     *slog.Logger
}

// NewWebhook creates a Webhook accepting requests whose path secret matches.
func NewWebhook(log *slog.Logger, handler *Handler, secret string) *Webhook {
	return &Webhook{
		handler: handler,
		secret:  secret,
		log:     log.With("component", "telegram_webhook"),
	}
}

// ServeHTTP handles one update. A malformed body is acknowledged with 200 so
// the platform does not redeliver it forever.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(r.PathValue("secret")), []byte(wh.secret)) != 1 {
		http.NotFound(w, r)
		return
	}

	var upd tgapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		wh.log.WarnContext(r.Context(), "malformed update", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusOK)
		return
	}

	wh.handler.Handle(r.Context(), upd)
	w.WriteHeader(http.StatusOK)
}
