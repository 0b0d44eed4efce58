package bot

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/atelier-bot/internal/domain"
	"github.com/heartmarshall/atelier-bot/internal/service/account"
	"github.com/heartmarshall/atelier-bot/internal/service/order"
)

// Reply is what the bot answers with. Notice is a transient acknowledgement
// shown for a button press; Text (with optional Buttons) is a new message.
type Reply struct {
	Text    string
	Buttons [][]Button
	Notice  string
}

// Button is one inline keyboard button.
type Button struct {
	Label string
	Token string
}

func button(label string, a Action) Button {
	return Button{Label: label, Token: a.Token()}
}

var (
	cancelButton = button("✖ Cancel", Action{Kind: ActionCancel})
	backButton   = button("⬅ Back", Action{Kind: ActionBack})
)

const (
	msgPong             = "pong"
	msgCancelled        = "Cancelled."
	msgNothingToCancel  = "Nothing to cancel."
	msgExpired          = "This button has expired."
	msgNotAvailable     = "Not found or expired."
	msgForbidden        = "⛔ This action is available to the atelier only."
	msgFailure          = "Something went wrong. Please start again."
	msgNoArtworks       = "You have no artworks yet. Ask the atelier to add one."
	msgNoPaper          = "You have no paper in stock. Ask the atelier to add some."
	msgNoWorks          = "You have no works yet."
	msgNoPapers         = "You have no paper yet."
	msgUseButtons       = "Please use the buttons above, or /cancel."
	msgIdle             = "Use /print to order a print, or /start for the menu."
	msgUnknownCommand   = "Unknown command."
	msgNotExpecting     = "I was not expecting an image."
	msgRateLimited      = "Too many requests, slow down a little."
	msgAwaitImage       = "Send the artwork image, or press Skip."
	msgTargetPrompt     = "Who is it for? Send a user id or @handle."
	msgArtNamePrompt    = "Artwork name?"
	msgPaperNamePrompt  = "Paper name?"
	msgQuantityPrompt   = "How many sheets?"
	msgCopiesNumber     = "Please enter the number of copies as a whole number."
	msgCopiesPositive   = "The number of copies must be greater than zero."
	msgQuantityInvalid  = "Please enter a positive whole number of sheets."
	msgQuantityTooLarge = "That is too many sheets. Enter a smaller number."
	msgNameRequired     = "The name cannot be empty. Try again."
	msgPaperGone        = "That paper is no longer available. Choose another:"
	msgOrderPaperGone   = "That paper is no longer available. The order was cancelled."
	msgUsageAddArt      = "Usage: /addart <user id> <name>"
	msgUsageAddPaper    = "Usage: /addpaper <user id> <name> <quantity>"
)

func textReply(text string) Reply { return Reply{Text: text} }

func noticeReply(notice string) Reply { return Reply{Notice: notice} }

func menuReply(reg account.Registration) Reply {
	var b strings.Builder
	if h := reg.User.Handle(); h != "" {
		fmt.Fprintf(&b, "Hello, %s!\n", h)
	} else {
		b.WriteString("Hello!\n")
	}

	if reg.IsAtelier {
		b.WriteString("You are signed in as the atelier.")
		return Reply{
			Text: b.String(),
			Buttons: [][]Button{
				{button("🎨 Add artwork", Action{Kind: ActionAddArt})},
				{button("📄 Add paper", Action{Kind: ActionAddPaper})},
			},
		}
	}

	b.WriteString("Order prints of your works here.")
	return Reply{
		Text:    b.String(),
		Buttons: [][]Button{{button("🖨 Print", Action{Kind: ActionPrint})}},
	}
}

func artworksReply(text string, artworks []domain.Artwork) Reply {
	rows := make([][]Button, 0, len(artworks)+1)
	for _, a := range artworks {
		rows = append(rows, []Button{button(a.Name, Action{Kind: ActionArtwork, ID: a.ID})})
	}
	rows = append(rows, []Button{cancelButton})
	return Reply{Text: text, Buttons: rows}
}

func papersReply(text string, choice order.PaperChoice) Reply {
	rows := make([][]Button, 0, len(choice.Papers)+1)
	for _, p := range choice.Papers {
		label := fmt.Sprintf("%s (%d)", p.Name, p.Quantity)
		rows = append(rows, []Button{button(label, Action{Kind: ActionPaper, ID: p.ID})})
	}
	rows = append(rows, []Button{backButton, cancelButton})

	var b strings.Builder
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "🎨 Artwork: %s\n", choice.Artwork.Name)
	if len(choice.Papers) == 0 {
		b.WriteString("No paper left in stock.")
	} else {
		b.WriteString("Choose paper:")
	}
	return Reply{Text: b.String(), Buttons: rows}
}

func copiesPrompt(p domain.PaperStock) string {
	return fmt.Sprintf("📄 Paper: %s (%d available)\nHow many copies?", p.Name, p.Quantity)
}

func confirmReply(d domain.OrderDraft) Reply {
	text := fmt.Sprintf(
		"Please confirm your order:\n\n🎨 Artwork: %s\n📄 Paper: %s\n🔢 Copies: %d\n\n%d sheet(s) of %s will be written off.",
		d.ArtworkName, d.PaperName, d.Copies, d.Copies, d.PaperName,
	)
	return Reply{
		Text: text,
		Buttons: [][]Button{
			{button("✅ Confirm", Action{Kind: ActionConfirm}), cancelButton},
		},
	}
}

func orderPlacedReply(o domain.Order) Reply {
	return textReply(fmt.Sprintf(
		"✅ Order #%d placed: %s on %s, %d cop%s. The atelier has been notified.",
		o.ID, o.ArtworkName, o.PaperName, o.Copies, plural(o.Copies, "y", "ies"),
	))
}

func insufficientText(e *domain.InsufficientStockError) string {
	return fmt.Sprintf("Not enough paper: only %d available. Enter a smaller number.", e.Available)
}

func worksReply(artworks []domain.Artwork) Reply {
	if len(artworks) == 0 {
		return textReply(msgNoWorks)
	}
	var b strings.Builder
	b.WriteString("Your works:")
	for _, a := range artworks {
		b.WriteString("\n• ")
		b.WriteString(a.Name)
	}
	return textReply(b.String())
}

func paperListReply(papers []domain.PaperStock) Reply {
	if len(papers) == 0 {
		return textReply(msgNoPapers)
	}
	var b strings.Builder
	b.WriteString("Your paper:")
	for _, p := range papers {
		fmt.Fprintf(&b, "\n%s: %d", p.Name, p.Quantity)
	}
	return textReply(b.String())
}

func resolutionText(e *domain.ResolutionError) string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("No user matches %q. Send another id or @handle.", e.Query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Several users match %q:", e.Query)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n• @%s (id %d)", c.Handle(), c.ID)
	}
	b.WriteString("\nPlease be more specific.")
	return b.String()
}

func targetAcceptedText(u domain.User, next string) string {
	if h := u.Handle(); h != "" {
		return fmt.Sprintf("For @%s (id %d).\n%s", h, u.ID, next)
	}
	return fmt.Sprintf("For id %d.\n%s", u.ID, next)
}

func imagePromptReply() Reply {
	return Reply{
		Text:    msgAwaitImage,
		Buttons: [][]Button{{button("⏭ Skip", Action{Kind: ActionSkip}), cancelButton}},
	}
}

func artworkAddedText(a domain.Artwork, degraded bool) string {
	switch {
	case degraded:
		return fmt.Sprintf("✅ Artwork %q added without icon: the image could not be processed.", a.Name)
	case a.Icon != nil:
		return fmt.Sprintf("✅ Artwork %q added with icon.", a.Name)
	default:
		return fmt.Sprintf("✅ Artwork %q added.", a.Name)
	}
}

func paperAddedText(p domain.PaperStock) string {
	return fmt.Sprintf("✅ Paper %q added: %d sheet(s).", p.Name, p.Quantity)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
