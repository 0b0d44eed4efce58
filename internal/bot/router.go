package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/internal/service/account"
	"github.com/heartmarshall/atelier-bot/internal/service/order"
	"github.com/heartmarshall/atelier-bot/internal/service/provision"
	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

type sessionStore interface {
	Get(userID int64) (domain.Session, bool)
	Clear(userID int64)
}

type accountService interface {
	Register(ctx context.Context) (account.Registration, error)
	IsAtelier(ctx context.Context) bool
	ListArtworks(ctx context.Context) ([]domain.Artwork, error)
	ListPapers(ctx context.Context) ([]domain.PaperStock, error)
}

type orderService interface {
	Start(ctx context.Context) ([]domain.Artwork, error)
	ChooseArtwork(ctx context.Context, artworkID int64) (order.PaperChoice, error)
	PaperOptions(ctx context.Context) (order.PaperChoice, error)
	BackToArtworks(ctx context.Context) ([]domain.Artwork, error)
	ChoosePaper(ctx context.Context, paperID int64) (domain.PaperStock, error)
	EnterCopies(ctx context.Context, text string) (domain.OrderDraft, error)
	Confirm(ctx context.Context) (domain.Order, error)
	Cancel(ctx context.Context) (bool, error)
}

type provisionService interface {
	Begin(ctx context.Context, kind domain.ProvisionKind) error
	Restart(ctx context.Context, kind domain.ProvisionKind) error
	SubmitTarget(ctx context.Context, query string) (domain.User, domain.State, error)
	SubmitName(ctx context.Context, text string) (domain.State, error)
	SubmitImage(ctx context.Context, data []byte) (provision.ArtworkResult, error)
	SkipImage(ctx context.Context) (provision.ArtworkResult, error)
	SubmitQuantity(ctx context.Context, text string) (domain.PaperStock, error)
	AddArtwork(ctx context.Context, targetID int64, name string) (domain.Artwork, error)
	AddPaper(ctx context.Context, targetID int64, name string, quantity int) (domain.PaperStock, error)
}

// Router routes events by the caller's session state to the workflow
// services and renders their outcome.
type Router struct {
	sessions  sessionStore
	accounts  accountService
	orders    orderService
	provision provisionService
	log       *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(
	log *slog.Logger,
	sessions sessionStore,
	accounts accountService,
	orders orderService,
	provision provisionService,
) *Router {
	return &Router{
		sessions:  sessions,
		accounts:  accounts,
		orders:    orders,
		provision: provision,
		log:       log.With("component", "router"),
	}
}

// Dispatch handles one event for the caller identified in ctx. Events of one
// user must be dispatched one at a time.
func (r *Router) Dispatch(ctx context.Context, ev Event) Reply {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return textReply(msgFailure)
	}

	switch e := ev.(type) {
	case Command:
		return r.command(ctx, e)
	case Action:
		return r.action(ctx, e)
	case Text:
		return r.text(ctx, userID, e.Body)
	case Image:
		return r.image(ctx, userID, e.Data)
	default:
		return noticeReply(msgExpired)
	}
}

// RateLimited is the reply for an event dropped by the rate limiter.
func RateLimited() Reply {
	return noticeReply(msgRateLimited)
}

func (r *Router) command(ctx context.Context, cmd Command) Reply {
	switch cmd.Name {
	case "start":
		reg, err := r.accounts.Register(ctx)
		if err != nil {
			return r.fail(ctx, err)
		}
		return menuReply(reg)
	case "ping":
		return textReply(msgPong)
	case "print":
		return r.startOrder(ctx)
	case "myworks":
		artworks, err := r.accounts.ListArtworks(ctx)
		if err != nil {
			return r.fail(ctx, err)
		}
		return worksReply(artworks)
	case "mypapers":
		papers, err := r.accounts.ListPapers(ctx)
		if err != nil {
			return r.fail(ctx, err)
		}
		return paperListReply(papers)
	case "cancel":
		return r.cancel(ctx, false)
	case "addart":
		return r.addArtCommand(ctx, cmd.Args)
	case "addpaper":
		return r.addPaperCommand(ctx, cmd.Args)
	default:
		return textReply(msgUnknownCommand)
	}
}

func (r *Router) action(ctx context.Context, a Action) Reply {
	switch a.Kind {
	case ActionPrint:
		return r.startOrder(ctx)
	case ActionArtwork:
		choice, err := r.orders.ChooseArtwork(ctx, a.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStaleReference) {
				return noticeReply(msgNotAvailable)
			}
			return r.fail(ctx, err)
		}
		return papersReply("", choice)
	case ActionBack:
		artworks, err := r.orders.BackToArtworks(ctx)
		if err != nil {
			return r.fail(ctx, err)
		}
		return artworksReply("Choose an artwork:", artworks)
	case ActionPaper:
		p, err := r.orders.ChoosePaper(ctx, a.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStaleReference) {
				return r.paperOptions(ctx, msgPaperGone, msgNotAvailable)
			}
			return r.fail(ctx, err)
		}
		return textReply(copiesPrompt(p))
	case ActionConfirm:
		return r.confirm(ctx)
	case ActionCancel:
		return r.cancel(ctx, true)
	case ActionAddArt:
		return r.beginProvision(ctx, r.provision.Begin, domain.ProvisionArtwork)
	case ActionAddPaper:
		return r.beginProvision(ctx, r.provision.Begin, domain.ProvisionPaper)
	case ActionSkip:
		res, err := r.provision.SkipImage(ctx)
		if err != nil {
			return r.fail(ctx, err)
		}
		return textReply(artworkAddedText(res.Artwork, res.IconDegraded))
	default:
		return noticeReply(msgExpired)
	}
}

// text routes a free-text reply by the current session state.
func (r *Router) text(ctx context.Context, userID int64, body string) Reply {
	sess, _ := r.sessions.Get(userID)

	switch sess.State {
	case domain.StateIdle:
		return textReply(msgIdle)
	case domain.StateChoosingArtwork, domain.StateChoosingPaper, domain.StateConfirming:
		return textReply(msgUseButtons)
	case domain.StateEnteringCopies:
		return r.enterCopies(ctx, body)
	case domain.StateAwaitingTargetUser:
		target, next, err := r.provision.SubmitTarget(ctx, body)
		if err != nil {
			return r.fail(ctx, err)
		}
		prompt := msgArtNamePrompt
		if next == domain.StateAwaitingPaperName {
			prompt = msgPaperNamePrompt
		}
		return textReply(targetAcceptedText(target, prompt))
	case domain.StateAwaitingArtworkName, domain.StateAwaitingPaperName:
		next, err := r.provision.SubmitName(ctx, body)
		if err != nil {
			return r.fail(ctx, err)
		}
		if next == domain.StateAwaitingImage {
			return imagePromptReply()
		}
		return textReply(msgQuantityPrompt)
	case domain.StateAwaitingImage:
		return imagePromptReply()
	case domain.StateAwaitingQuantity:
		p, err := r.provision.SubmitQuantity(ctx, body)
		if err != nil {
			return r.fail(ctx, err)
		}
		return textReply(paperAddedText(p))
	default:
		r.log.WarnContext(ctx, "session in unknown state, clearing",
			slog.Int64("user_id", userID),
			slog.String("state", sess.State.String()),
		)
		r.sessions.Clear(userID)
		return textReply(msgFailure)
	}
}

func (r *Router) image(ctx context.Context, userID int64, data []byte) Reply {
	sess, _ := r.sessions.Get(userID)
	if sess.State != domain.StateAwaitingImage {
		return textReply(msgNotExpecting)
	}

	res, err := r.provision.SubmitImage(ctx, data)
	if err != nil {
		return r.fail(ctx, err)
	}
	return textReply(artworkAddedText(res.Artwork, res.IconDegraded))
}

func (r *Router) startOrder(ctx context.Context) Reply {
	artworks, err := r.orders.Start(ctx)
	if err != nil {
		return r.fail(ctx, err)
	}
	return artworksReply("Choose an artwork:", artworks)
}

func (r *Router) enterCopies(ctx context.Context, body string) Reply {
	draft, err := r.orders.EnterCopies(ctx, body)
	if err != nil {
		if errors.Is(err, domain.ErrStaleReference) {
			return r.paperOptions(ctx, msgPaperGone, "")
		}
		return r.fail(ctx, err)
	}
	return confirmReply(draft)
}

func (r *Router) confirm(ctx context.Context) Reply {
	created, err := r.orders.Confirm(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrStaleReference) {
			return textReply(msgOrderPaperGone)
		}
		return r.fail(ctx, err)
	}
	return orderPlacedReply(created)
}

// paperOptions re-renders the paper keyboard after a stale paper reference.
func (r *Router) paperOptions(ctx context.Context, text, notice string) Reply {
	choice, err := r.orders.PaperOptions(ctx)
	if err != nil {
		return r.fail(ctx, err)
	}
	reply := papersReply(text, choice)
	reply.Notice = notice
	return reply
}

func (r *Router) cancel(ctx context.Context, fromButton bool) Reply {
	active, err := r.orders.Cancel(ctx)
	if err != nil {
		return r.fail(ctx, err)
	}
	if !active {
		if fromButton {
			return noticeReply(msgNothingToCancel)
		}
		return textReply(msgNothingToCancel)
	}
	return textReply(msgCancelled)
}

// beginProvision starts a flow with start: Begin for menu buttons, which only
// fire from idle, or Restart for the commands.
func (r *Router) beginProvision(ctx context.Context, start func(context.Context, domain.ProvisionKind) error, kind domain.ProvisionKind) Reply {
	if err := start(ctx, kind); err != nil {
		return r.fail(ctx, err)
	}
	return Reply{Text: msgTargetPrompt, Buttons: [][]Button{{cancelButton}}}
}

// addArtCommand handles "/addart <id> <name...>". Without arguments it starts
// the conversational flow.
func (r *Router) addArtCommand(ctx context.Context, args []string) Reply {
	if !r.accounts.IsAtelier(ctx) {
		return textReply(msgForbidden)
	}
	if len(args) < 2 {
		return r.beginProvision(ctx, r.provision.Restart, domain.ProvisionArtwork)
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return textReply(msgUsageAddArt)
	}

	art, err := r.provision.AddArtwork(ctx, targetID, strings.Join(args[1:], " "))
	if err != nil {
		return r.fail(ctx, err)
	}
	return textReply(artworkAddedText(art, false))
}

// addPaperCommand handles "/addpaper <id> <name...> <qty>". Without enough
// arguments it starts the conversational flow.
func (r *Router) addPaperCommand(ctx context.Context, args []string) Reply {
	if !r.accounts.IsAtelier(ctx) {
		return textReply(msgForbidden)
	}
	if len(args) < 3 {
		return r.beginProvision(ctx, r.provision.Restart, domain.ProvisionPaper)
	}

	targetID, idErr := strconv.ParseInt(args[0], 10, 64)
	qty, qtyErr := domain.ParsePositiveInt(args[len(args)-1])
	if idErr == nil && errors.Is(qtyErr, domain.ErrNumberTooLarge) {
		return textReply(msgQuantityTooLarge)
	}
	if idErr != nil || qtyErr != nil {
		return textReply(msgUsageAddPaper)
	}

	p, err := r.provision.AddPaper(ctx, targetID, strings.Join(args[1:len(args)-1], " "), qty)
	if err != nil {
		return r.fail(ctx, err)
	}
	return textReply(paperAddedText(p))
}
