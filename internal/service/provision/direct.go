package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// AddArtwork registers an artwork for targetID in one step. Unlike the
// conversational flow, an unknown targetID is created on the fly.
func (s *Service) AddArtwork(ctx context.Context, targetID int64, name string) (domain.Artwork, error) {
	if _, err := s.operator(ctx); err != nil {
		return domain.Artwork{}, err
	}

	name = domain.NormalizeName(name)
	if err := validateDirect(targetID, name); err != nil {
		return domain.Artwork{}, err
	}

	var art domain.Artwork
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.Upsert(txCtx, domain.User{ID: targetID}); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		var createErr error
		art, createErr = s.artworks.Create(txCtx, targetID, name, nil)
		if createErr != nil {
			return fmt.Errorf("create artwork: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return domain.Artwork{}, err
	}

	s.log.InfoContext(ctx, "artwork added directly",
		slog.Int64("target_user_id", targetID),
		slog.Int64("artwork_id", art.ID),
		slog.String("name", name),
	)
	return art, nil
}

// AddPaper inserts a stock line for targetID in one step, creating the user
// when it is unknown.
func (s *Service) AddPaper(ctx context.Context, targetID int64, name string, quantity int) (domain.PaperStock, error) {
	if _, err := s.operator(ctx); err != nil {
		return domain.PaperStock{}, err
	}

	name = domain.NormalizeName(name)
	if err := validateDirect(targetID, name); err != nil {
		return domain.PaperStock{}, err
	}
	if quantity <= 0 {
		return domain.PaperStock{}, domain.NewValidationError("quantity", "must be a positive number")
	}

	var p domain.PaperStock
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.Upsert(txCtx, domain.User{ID: targetID}); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		var addErr error
		p, addErr = s.papers.Add(txCtx, targetID, name, quantity)
		if addErr != nil {
			return fmt.Errorf("add paper: %w", addErr)
		}
		return nil
	})
	if err != nil {
		return domain.PaperStock{}, err
	}

	s.log.InfoContext(ctx, "paper added directly",
		slog.Int64("target_user_id", targetID),
		slog.Int64("paper_id", p.ID),
		slog.String("name", name),
		slog.Int("quantity", quantity),
	)
	return p, nil
}

func validateDirect(targetID int64, name string) error {
	var errs []domain.FieldError
	if targetID <= 0 {
		errs = append(errs, domain.FieldError{Field: "target_id", Message: "must be a positive id"})
	}
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
