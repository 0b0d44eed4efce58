package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

// Start opens the order flow and snapshots the caller's artworks. The flow
// does not start without at least one artwork and one non-empty stock line.
func (s *Service) Start(ctx context.Context) ([]domain.Artwork, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	artworks, err := s.artworks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	if len(artworks) == 0 {
		return nil, domain.ErrNoArtworks
	}

	papers, err := s.papers.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list paper: %w", err)
	}
	if !domain.HasStock(papers) {
		return nil, domain.ErrNoPaper
	}

	s.sessions.Clear(userID)
	s.sessions.Set(userID, domain.StateChoosingArtwork, domain.SessionData{Artworks: artworks})

	s.log.DebugContext(ctx, "order flow started",
		slog.Int64("user_id", userID),
		slog.Int("artworks", len(artworks)),
	)
	return artworks, nil
}

// ChooseArtwork accepts an artwork from the entry snapshot and lists the
// caller's paper, read live.
func (s *Service) ChooseArtwork(ctx context.Context, artworkID int64) (PaperChoice, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return PaperChoice{}, domain.ErrUnauthorized
	}

	sess, err := s.inState(userID, domain.StateChoosingArtwork)
	if err != nil {
		return PaperChoice{}, err
	}

	art, found := sess.Data.FindArtwork(artworkID)
	if !found {
		return PaperChoice{}, fmt.Errorf("artwork %d: %w", artworkID, domain.ErrStaleReference)
	}

	papers, err := s.papers.ListByOwner(ctx, userID)
	if err != nil {
		return PaperChoice{}, fmt.Errorf("list paper: %w", err)
	}

	s.sessions.Set(userID, domain.StateChoosingPaper, domain.SessionData{Artwork: &art})
	return PaperChoice{Artwork: art, Papers: inStock(papers)}, nil
}

// PaperOptions re-lists paper for the artwork already chosen. Valid while
// choosing paper.
func (s *Service) PaperOptions(ctx context.Context) (PaperChoice, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return PaperChoice{}, domain.ErrUnauthorized
	}

	sess, err := s.inState(userID, domain.StateChoosingPaper)
	if err != nil {
		return PaperChoice{}, err
	}
	if sess.Data.Artwork == nil {
		return PaperChoice{}, domain.ErrUnexpectedAction
	}

	papers, err := s.papers.ListByOwner(ctx, userID)
	if err != nil {
		return PaperChoice{}, fmt.Errorf("list paper: %w", err)
	}
	return PaperChoice{Artwork: *sess.Data.Artwork, Papers: inStock(papers)}, nil
}

// BackToArtworks returns from paper choice to the artwork snapshot.
func (s *Service) BackToArtworks(ctx context.Context) ([]domain.Artwork, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.inState(userID, domain.StateChoosingPaper)
	if err != nil {
		return nil, err
	}

	s.sessions.Set(userID, domain.StateChoosingArtwork, domain.SessionData{})
	return sess.Data.Artworks, nil
}

// ChoosePaper accepts a stock line fetched live by id. A line that is gone
// or belongs to someone else is a stale reference.
func (s *Service) ChoosePaper(ctx context.Context, paperID int64) (domain.PaperStock, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.PaperStock{}, domain.ErrUnauthorized
	}

	if _, err := s.inState(userID, domain.StateChoosingPaper); err != nil {
		return domain.PaperStock{}, err
	}

	p, err := s.livePaper(ctx, userID, paperID)
	if err != nil {
		return domain.PaperStock{}, err
	}

	s.sessions.Set(userID, domain.StateEnteringCopies, domain.SessionData{Paper: &p})
	return p, nil
}

// EnterCopies validates the copy count against the line's current quantity
// and moves to confirmation.
func (s *Service) EnterCopies(ctx context.Context, text string) (domain.OrderDraft, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.OrderDraft{}, domain.ErrUnauthorized
	}

	sess, err := s.inState(userID, domain.StateEnteringCopies)
	if err != nil {
		return domain.OrderDraft{}, err
	}
	if sess.Data.Artwork == nil || sess.Data.Paper == nil {
		return domain.OrderDraft{}, domain.ErrUnexpectedAction
	}

	copies, err := domain.ParsePositiveInt(text)
	switch {
	case errors.Is(err, domain.ErrNumberTooLarge):
		// More than any stock line can hold; answered with the live quantity.
		copies = math.MaxInt
	case err != nil:
		return domain.OrderDraft{}, domain.NewValidationError("copies", "must be a number")
	case copies <= 0:
		return domain.OrderDraft{}, domain.NewValidationError("copies", "must be greater than zero")
	}

	p, err := s.livePaper(ctx, userID, sess.Data.Paper.ID)
	if err != nil {
		if errors.Is(err, domain.ErrStaleReference) {
			s.sessions.Set(userID, domain.StateChoosingPaper, domain.SessionData{})
		}
		return domain.OrderDraft{}, err
	}
	if copies > p.Quantity {
		s.sessions.Set(userID, domain.StateEnteringCopies, domain.SessionData{Paper: &p})
		return domain.OrderDraft{}, &domain.InsufficientStockError{
			PaperID:   p.ID,
			Requested: copies,
			Available: p.Quantity,
		}
	}

	s.sessions.Set(userID, domain.StateConfirming, domain.SessionData{Paper: &p, Copies: copies})
	return draftOf(userID, *sess.Data.Artwork, p, copies), nil
}

// Confirm commits the order: the stock decrement and the order insert run in
// one transaction. Running short of stock at this point sends the caller back
// to entering copies; any other failure clears the session.
func (s *Service) Confirm(ctx context.Context) (domain.Order, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Order{}, domain.ErrUnauthorized
	}

	sess, err := s.inState(userID, domain.StateConfirming)
	if err != nil {
		return domain.Order{}, err
	}
	if sess.Data.Artwork == nil || sess.Data.Paper == nil || sess.Data.Copies <= 0 {
		s.sessions.Clear(userID)
		return domain.Order{}, domain.ErrUnexpectedAction
	}
	draft := draftOf(userID, *sess.Data.Artwork, *sess.Data.Paper, sess.Data.Copies)

	var created domain.Order
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.papers.Decrement(txCtx, draft.PaperID, draft.Copies); err != nil {
			return err
		}

		var createErr error
		created, createErr = s.orders.Create(txCtx, domain.Order{
			OwnerID:     userID,
			ArtworkName: draft.ArtworkName,
			PaperName:   draft.PaperName,
			Copies:      draft.Copies,
			Status:      domain.OrderStatusNew,
			CreatedAt:   s.now().UTC(),
		})
		if createErr != nil {
			return fmt.Errorf("create order: %w", createErr)
		}
		return nil
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.sessions.Set(userID, domain.StateEnteringCopies, domain.SessionData{})
			return domain.Order{}, err
		}

		s.sessions.Clear(userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("paper %d: %w", draft.PaperID, domain.ErrStaleReference)
		}
		s.log.ErrorContext(ctx, "order commit failed",
			slog.Int64("user_id", userID),
			slog.Int64("paper_id", draft.PaperID),
			slog.Int("copies", draft.Copies),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("commit order: %w", err)
	}

	s.sessions.Clear(userID)

	s.log.InfoContext(ctx, "order committed",
		slog.Int64("user_id", userID),
		slog.Int64("order_id", created.ID),
		slog.Int64("paper_id", draft.PaperID),
		slog.Int("copies", created.Copies),
	)

	s.notify(ctx, created, draft.ArtworkID)
	return created, nil
}

// Cancel drops any active session. It reports whether one was active.
func (s *Service) Cancel(ctx context.Context) (bool, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return false, domain.ErrUnauthorized
	}

	sess, found := s.sessions.Get(userID)
	s.sessions.Clear(userID)
	return found && !sess.IsIdle(), nil
}

// notify tells the atelier about a committed order. Failures are logged only;
// the order stands either way.
func (s *Service) notify(ctx context.Context, o domain.Order, artworkID int64) {
	notice := domain.OrderNotice{
		Order:      o,
		ArtistID:   o.OwnerID,
		ArtistName: ctxutil.UsernameFromCtx(ctx),
	}

	if art, err := s.artworks.GetByID(ctx, artworkID); err == nil {
		notice.ArtworkIcon = art.Icon
	} else {
		s.log.WarnContext(ctx, "artwork icon unavailable for notice",
			slog.Int64("artwork_id", artworkID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.notifier.NotifyOrder(ctx, notice); err != nil {
		s.log.WarnContext(ctx, "order notification failed",
			slog.Int64("order_id", o.ID),
			slog.String("error", err.Error()),
		)
	}
}

// livePaper re-reads a stock line and checks it still belongs to the caller.
func (s *Service) livePaper(ctx context.Context, userID, paperID int64) (domain.PaperStock, error) {
	p, err := s.papers.GetByID(ctx, paperID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PaperStock{}, fmt.Errorf("paper %d: %w", paperID, domain.ErrStaleReference)
		}
		return domain.PaperStock{}, fmt.Errorf("get paper: %w", err)
	}
	if p.OwnerID != userID {
		return domain.PaperStock{}, fmt.Errorf("paper %d: %w", paperID, domain.ErrStaleReference)
	}
	return p, nil
}

func draftOf(userID int64, art domain.Artwork, p domain.PaperStock, copies int) domain.OrderDraft {
	return domain.OrderDraft{
		OwnerID:     userID,
		ArtworkID:   art.ID,
		ArtworkName: art.Name,
		PaperID:     p.ID,
		PaperName:   p.Name,
		Copies:      copies,
	}
}
