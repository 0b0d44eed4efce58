// Package order drives the artist-side print order conversation.
package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

type sessionStore interface {
	Get(userID int64) (domain.Session, bool)
	Set(userID int64, state domain.State, patch domain.SessionData) domain.Session
	Clear(userID int64)
}

type artworkRepo interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Artwork, error)
	GetByID(ctx context.Context, id int64) (domain.Artwork, error)
}

type paperRepo interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.PaperStock, error)
	GetByID(ctx context.Context, id int64) (domain.PaperStock, error)
	Decrement(ctx context.Context, id int64, amount int) (domain.PaperStock, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
}

type notifier interface {
	NotifyOrder(ctx context.Context, notice domain.OrderNotice) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the order flow:
// ChoosingArtwork → ChoosingPaper → EnteringCopies → Confirming → commit.
type Service struct {
	sessions sessionStore
	artworks artworkRepo
	papers   paperRepo
	orders   orderRepo
	notifier notifier
	tx       txManager
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates an order Service.
func NewService(
	log *slog.Logger,
	sessions sessionStore,
	artworks artworkRepo,
	papers paperRepo,
	orders orderRepo,
	notifier notifier,
	tx txManager,
) *Service {
	return &Service{
		sessions: sessions,
		artworks: artworks,
		papers:   papers,
		orders:   orders,
		notifier: notifier,
		tx:       tx,
		log:      log.With("service", "order"),
		now:      time.Now,
	}
}

// PaperChoice is what the artist picks paper from.
type PaperChoice struct {
	Artwork domain.Artwork
	Papers  []domain.PaperStock
}

// inState loads the caller's session and checks it is in want.
func (s *Service) inState(userID int64, want domain.State) (domain.Session, error) {
	sess, _ := s.sessions.Get(userID)
	if sess.State != want {
		return domain.Session{}, domain.ErrUnexpectedAction
	}
	return sess, nil
}

// inStock keeps only lines with a positive quantity.
func inStock(papers []domain.PaperStock) []domain.PaperStock {
	out := make([]domain.PaperStock, 0, len(papers))
	for _, p := range papers {
		if p.Quantity > 0 {
			out = append(out, p)
		}
	}
	return out
}
