package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tgapi "github.com/heartmarshall/atelier-bot/internal/adapter/telegram"
)

type updateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]tgapi.Update, error)
}

const (
	minPollBackoff = time.Second
	maxPollBackoff = 30 * time.Second
)

// Poller long-polls the Bot API and hands each update to the Handler in
// arrival order.
type Poller struct {
	source  updateSource
	handler *Handler
	log     *slog.Logger
	offset  int64
}

// NewPoller creates a Poller.
func NewPoller(log *slog.Logger, source updateSource, handler *Handler) *Poller {
	return &Poller{
		source:  source,
		handler: handler,
		log:     log.With("component", "telegram_poller"),
	}
}

// Run polls until ctx is cancelled. Fetch errors are retried with a capped
// exponential backoff.
func (p *Poller) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "polling started")
	backoff := minPollBackoff

	for {
		updates, err := p.source.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				p.log.InfoContext(ctx, "polling stopped")
				return nil
			}
			p.log.WarnContext(ctx, "get updates failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", backoff),
			)
			select {
			case <-ctx.Done():
				p.log.InfoContext(ctx, "polling stopped")
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = minPollBackoff

		p.process(ctx, updates)
	}
}

// process handles a batch and advances the offset past it.
func (p *Poller) process(ctx context.Context, updates []tgapi.Update) {
	for _, upd := range updates {
		if upd.UpdateID < p.offset {
			continue
		}
		p.handler.Handle(ctx, upd)
		p.offset = upd.UpdateID + 1
	}
}
