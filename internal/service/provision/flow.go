package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// Begin starts a provisioning flow of the given kind. The operator must be
// idle; a flow in progress is left untouched and ErrUnexpectedAction returned.
func (s *Service) Begin(ctx context.Context, kind domain.ProvisionKind) error {
	return s.begin(ctx, kind, false)
}

// Restart starts a provisioning flow of the given kind, discarding whatever
// session the operator had.
func (s *Service) Restart(ctx context.Context, kind domain.ProvisionKind) error {
	return s.begin(ctx, kind, true)
}

func (s *Service) begin(ctx context.Context, kind domain.ProvisionKind, replace bool) error {
	userID, err := s.operator(ctx)
	if err != nil {
		return err
	}
	if !kind.IsValid() {
		return domain.NewValidationError("kind", "unknown provisioning kind")
	}

	if replace {
		s.sessions.Clear(userID)
	} else if _, err := s.inState(userID, domain.StateIdle); err != nil {
		return err
	}
	s.sessions.Set(userID, domain.StateAwaitingTargetUser, domain.SessionData{Kind: kind})
	return nil
}

// SubmitTarget resolves the artist the operator is provisioning for. Anything
// but a unique match leaves the state unchanged; unknown identities are never
// created here.
func (s *Service) SubmitTarget(ctx context.Context, query string) (domain.User, domain.State, error) {
	userID, err := s.operator(ctx)
	if err != nil {
		return domain.User{}, "", err
	}

	sess, err := s.inState(userID, domain.StateAwaitingTargetUser)
	if err != nil {
		return domain.User{}, "", err
	}

	target, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return domain.User{}, sess.State, err
	}

	next := domain.StateAwaitingArtworkName
	if sess.Data.Kind == domain.ProvisionPaper {
		next = domain.StateAwaitingPaperName
	}
	s.sessions.Set(userID, next, domain.SessionData{TargetUserID: target.ID})
	return target, next, nil
}

// SubmitName records the artwork or paper name and advances to the image or
// quantity step.
func (s *Service) SubmitName(ctx context.Context, text string) (domain.State, error) {
	userID, err := s.operator(ctx)
	if err != nil {
		return "", err
	}

	sess, _ := s.sessions.Get(userID)
	var next domain.State
	switch sess.State {
	case domain.StateAwaitingArtworkName:
		next = domain.StateAwaitingImage
	case domain.StateAwaitingPaperName:
		next = domain.StateAwaitingQuantity
	default:
		return "", domain.ErrUnexpectedAction
	}

	name := domain.NormalizeName(text)
	if name == "" {
		return sess.State, domain.NewValidationError("name", "required")
	}

	s.sessions.Set(userID, next, domain.SessionData{Name: name})
	return next, nil
}

// SubmitImage commits the artwork with an icon built from data. A failed icon
// does not fail the commit.
func (s *Service) SubmitImage(ctx context.Context, data []byte) (ArtworkResult, error) {
	userID, err := s.operator(ctx)
	if err != nil {
		return ArtworkResult{}, err
	}

	sess, err := s.inState(userID, domain.StateAwaitingImage)
	if err != nil {
		return ArtworkResult{}, err
	}

	icon := s.icons.MakeIcon(data)
	degraded := icon == nil
	if degraded {
		s.log.WarnContext(ctx, "artwork icon skipped, image unusable",
			slog.Int64("target_user_id", sess.Data.TargetUserID),
			slog.Int("bytes", len(data)),
		)
	}

	art, err := s.commitArtwork(ctx, userID, sess.Data, icon)
	if err != nil {
		return ArtworkResult{}, err
	}
	return ArtworkResult{Artwork: art, IconDegraded: degraded}, nil
}

// SkipImage commits the artwork without an icon.
func (s *Service) SkipImage(ctx context.Context) (ArtworkResult, error) {
	userID, err := s.operator(ctx)
	if err != nil {
		return ArtworkResult{}, err
	}

	sess, err := s.inState(userID, domain.StateAwaitingImage)
	if err != nil {
		return ArtworkResult{}, err
	}

	art, err := s.commitArtwork(ctx, userID, sess.Data, nil)
	if err != nil {
		return ArtworkResult{}, err
	}
	return ArtworkResult{Artwork: art}, nil
}

// SubmitQuantity commits a new stock line. The quantity must be a positive
// integer literal.
func (s *Service) SubmitQuantity(ctx context.Context, text string) (domain.PaperStock, error) {
	userID, err := s.operator(ctx)
	if err != nil {
		return domain.PaperStock{}, err
	}

	sess, err := s.inState(userID, domain.StateAwaitingQuantity)
	if err != nil {
		return domain.PaperStock{}, err
	}

	qty, err := domain.ParsePositiveInt(text)
	switch {
	case errors.Is(err, domain.ErrNumberTooLarge):
		return domain.PaperStock{}, domain.NewValidationError("quantity", "is too large")
	case err != nil || qty <= 0:
		return domain.PaperStock{}, domain.NewValidationError("quantity", "must be a positive number")
	}

	p, err := s.papers.Add(ctx, sess.Data.TargetUserID, sess.Data.Name, qty)
	s.sessions.Clear(userID)
	if err != nil {
		s.log.ErrorContext(ctx, "paper commit failed",
			slog.Int64("target_user_id", sess.Data.TargetUserID),
			slog.String("error", err.Error()),
		)
		return domain.PaperStock{}, fmt.Errorf("add paper: %w", err)
	}

	s.log.InfoContext(ctx, "paper added",
		slog.Int64("target_user_id", p.OwnerID),
		slog.Int64("paper_id", p.ID),
		slog.String("name", p.Name),
		slog.Int("quantity", p.Quantity),
	)
	return p, nil
}

func (s *Service) commitArtwork(ctx context.Context, userID int64, data domain.SessionData, icon *string) (domain.Artwork, error) {
	art, err := s.artworks.Create(ctx, data.TargetUserID, data.Name, icon)
	s.sessions.Clear(userID)
	if err != nil {
		s.log.ErrorContext(ctx, "artwork commit failed",
			slog.Int64("target_user_id", data.TargetUserID),
			slog.String("error", err.Error()),
		)
		return domain.Artwork{}, fmt.Errorf("create artwork: %w", err)
	}

	s.log.InfoContext(ctx, "artwork added",
		slog.Int64("target_user_id", art.OwnerID),
		slog.Int64("artwork_id", art.ID),
		slog.String("name", art.Name),
		slog.Bool("icon", art.Icon != nil),
	)
	return art, nil
}
