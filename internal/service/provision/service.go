// Package provision lets the atelier register artworks and stock for artists,
// either step by step or with a single direct command.
package provision

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

type sessionStore interface {
	Get(userID int64) (domain.Session, bool)
	Set(userID int64, state domain.State, patch domain.SessionData) domain.Session
	Clear(userID int64)
}

type userResolver interface {
	Resolve(ctx context.Context, query string) (domain.User, error)
}

type userRepo interface {
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
}

type artworkRepo interface {
	Create(ctx context.Context, ownerID int64, name string, icon *string) (domain.Artwork, error)
}

type paperRepo interface {
	Add(ctx context.Context, ownerID int64, name string, quantity int) (domain.PaperStock, error)
}

type iconMaker interface {
	MakeIcon(data []byte) *string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements both provisioning flows. Every operation is reserved
// to the atelier.
type Service struct {
	sessions  sessionStore
	resolver  userResolver
	users     userRepo
	artworks  artworkRepo
	papers    paperRepo
	icons     iconMaker
	tx        txManager
	atelierID int64
	log       *slog.Logger
}

// NewService creates a provisioning Service.
func NewService(
	log *slog.Logger,
	sessions sessionStore,
	resolver userResolver,
	users userRepo,
	artworks artworkRepo,
	papers paperRepo,
	icons iconMaker,
	tx txManager,
	atelierID int64,
) *Service {
	return &Service{
		sessions:  sessions,
		resolver:  resolver,
		users:     users,
		artworks:  artworks,
		papers:    papers,
		icons:     icons,
		tx:        tx,
		atelierID: atelierID,
		log:       log.With("service", "provision"),
	}
}

// ArtworkResult is a committed artwork. IconDegraded is set when an image was
// uploaded but could not be turned into an icon.
type ArtworkResult struct {
	Artwork      domain.Artwork
	IconDegraded bool
}

// operator returns the caller's id when the caller is the atelier.
func (s *Service) operator(ctx context.Context) (int64, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	if userID != s.atelierID {
		return 0, domain.ErrForbidden
	}
	return userID, nil
}

// inState loads the operator's session and checks it is in want.
func (s *Service) inState(userID int64, want domain.State) (domain.Session, error) {
	sess, _ := s.sessions.Get(userID)
	if sess.State != want {
		return domain.Session{}, domain.ErrUnexpectedAction
	}
	return sess, nil
}
