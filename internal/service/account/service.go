// Package account handles greeting users and listing what they own.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

type userRepo interface {
	Upsert(ctx context.Context, u domain.User) (domain.User, error)
}

type artworkRepo interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Artwork, error)
}

type paperRepo interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.PaperStock, error)
}

// Service provides the caller-facing account operations.
type Service struct {
	users     userRepo
	artworks  artworkRepo
	papers    paperRepo
	atelierID int64
	log       *slog.Logger
}

// NewService creates an account Service.
func NewService(
	log *slog.Logger,
	users userRepo,
	artworks artworkRepo,
	papers paperRepo,
	atelierID int64,
) *Service {
	return &Service{
		users:     users,
		artworks:  artworks,
		papers:    papers,
		atelierID: atelierID,
		log:       log.With("service", "account"),
	}
}

// Registration is the result of Register.
type Registration struct {
	User      domain.User
	IsAtelier bool
}

// Register records the caller (id and current handle) and reports its role.
func (s *Service) Register(ctx context.Context) (Registration, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return Registration{}, domain.ErrUnauthorized
	}

	u := domain.User{ID: userID}
	if name := ctxutil.UsernameFromCtx(ctx); name != "" {
		u.DisplayName = &name
	}

	saved, err := s.users.Upsert(ctx, u)
	if err != nil {
		return Registration{}, fmt.Errorf("upsert user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered",
		slog.Int64("user_id", saved.ID),
		slog.String("handle", saved.Handle()),
	)

	return Registration{User: saved, IsAtelier: userID == s.atelierID}, nil
}

// IsAtelier reports whether the caller is the atelier operator.
func (s *Service) IsAtelier(ctx context.Context) bool {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	return ok && userID == s.atelierID
}

// ListArtworks returns the caller's artworks.
func (s *Service) ListArtworks(ctx context.Context) ([]domain.Artwork, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	artworks, err := s.artworks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	return artworks, nil
}

// ListPapers returns the caller's stock lines, empty ones included.
func (s *Service) ListPapers(ctx context.Context) ([]domain.PaperStock, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	papers, err := s.papers.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list paper: %w", err)
	}
	return papers, nil
}
