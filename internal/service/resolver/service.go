// Package resolver maps free-text operator input to a known user.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// MaxCandidates caps the name search.
const MaxCandidates = 10

type userRepo interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
	SearchByName(ctx context.Context, fragment string, limit int) ([]domain.User, error)
}

// Service resolves identifiers to users.
type Service struct {
	users userRepo
	log   *slog.Logger
}

// NewService creates a resolver Service.
func NewService(log *slog.Logger, users userRepo) *Service {
	return &Service{
		users: users,
		log:   log.With("service", "resolver"),
	}
}

// Resolve returns the single user the query identifies.
//
// A numeric query is tried as an id first and wins over any name match.
// Otherwise (or on an id miss) display names are searched by case-sensitive
// substring. Zero or several matches yield a *domain.ResolutionError; a
// candidate is never picked automatically.
func (s *Service) Resolve(ctx context.Context, query string) (domain.User, error) {
	q := domain.NormalizeHandle(query)
	if q == "" {
		return domain.User{}, domain.NewValidationError("query", "required")
	}

	if id, err := strconv.ParseInt(q, 10, 64); err == nil && id > 0 {
		u, err := s.users.GetByID(ctx, id)
		switch {
		case err == nil:
			return u, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.User{}, fmt.Errorf("get user by id: %w", err)
		}
	}

	candidates, err := s.users.SearchByName(ctx, q, MaxCandidates)
	if err != nil {
		return domain.User{}, fmt.Errorf("search users: %w", err)
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	s.log.DebugContext(ctx, "user not resolved",
		slog.String("query", q),
		slog.Int("candidates", len(candidates)),
	)
	return domain.User{}, &domain.ResolutionError{Query: q, Candidates: candidates}
}
