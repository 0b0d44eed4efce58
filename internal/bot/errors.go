package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

// fail maps a workflow error to a reply. Recoverable errors leave the
// session alone; anything unrecognised is treated as a commit failure and
// clears the session.
func (r *Router) fail(ctx context.Context, err error) Reply {
	var (
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
		resolution *domain.ResolutionError
	)

	switch {
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return textReply(msgForbidden)
	case errors.As(err, &validation):
		return textReply(validationText(validation))
	case errors.As(err, &stock):
		return textReply(insufficientText(stock))
	case errors.As(err, &resolution):
		return textReply(resolutionText(resolution))
	case errors.Is(err, domain.ErrUnexpectedAction):
		return noticeReply(msgExpired)
	case errors.Is(err, domain.ErrStaleReference):
		return noticeReply(msgNotAvailable)
	case errors.Is(err, domain.ErrNoArtworks):
		return textReply(msgNoArtworks)
	case errors.Is(err, domain.ErrNoPaper):
		return textReply(msgNoPaper)
	}

	userID, _ := ctxutil.UserIDFromCtx(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.log.WarnContext(ctx, "event aborted", slog.Int64("user_id", userID), slog.String("error", err.Error()))
	} else {
		r.log.ErrorContext(ctx, "event failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}
	r.sessions.Clear(userID)
	return textReply(msgFailure)
}

func validationText(v *domain.ValidationError) string {
	if len(v.Errors) == 0 {
		return msgFailure
	}
	fe := v.Errors[0]
	switch fe.Field {
	case "copies":
		if fe.Message == "must be a number" {
			return msgCopiesNumber
		}
		return msgCopiesPositive
	case "quantity":
		if fe.Message == "is too large" {
			return msgQuantityTooLarge
		}
		return msgQuantityInvalid
	case "name":
		return msgNameRequired
	}
	return "⚠️ " + fe.Field + ": " + fe.Message
}
