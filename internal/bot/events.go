// Package bot turns decoded chat events into workflow calls and renders the
// replies. It knows nothing about the chat transport.
package bot

import (
	"strconv"
	"strings"
)

// Event is one inbound chat event. It is one of Command, Text, Action or Image.
type Event interface {
	isEvent()
}

// Command is a slash command with whitespace-separated arguments.
type Command struct {
	Name string
	Args []string
}

// Text is a free-text reply.
type Text struct {
	Body string
}

// Action is a decoded button press.
type Action struct {
	Kind ActionKind
	ID   int64
}

// Image is an uploaded picture.
type Image struct {
	Data []byte
}

func (Command) isEvent() {}
func (Text) isEvent()    {}
func (Action) isEvent()  {}
func (Image) isEvent()   {}

// ActionKind tags a button action.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionPrint
	ActionArtwork
	ActionPaper
	ActionConfirm
	ActionCancel
	ActionBack
	ActionAddArt
	ActionAddPaper
	ActionSkip
)

// Button tokens.
const (
	tokenPrint    = "print"
	tokenConfirm  = "confirm_order"
	tokenCancel   = "cancel"
	tokenBack     = "back_to_artworks"
	tokenAddArt   = "add_art"
	tokenAddPaper = "add_paper"
	tokenSkip     = "skip"

	prefixArtwork = "art_"
	prefixPaper   = "paper_"
)

var fixedTokens = map[string]ActionKind{
	tokenPrint:    ActionPrint,
	tokenConfirm:  ActionConfirm,
	tokenCancel:   ActionCancel,
	tokenBack:     ActionBack,
	tokenAddArt:   ActionAddArt,
	tokenAddPaper: ActionAddPaper,
	tokenSkip:     ActionSkip,
}

// DecodeAction parses a button token. Malformed or foreign tokens decode to
// ActionUnknown instead of failing.
func DecodeAction(token string) Action {
	if kind, ok := fixedTokens[token]; ok {
		return Action{Kind: kind}
	}
	if id, ok := idAfter(token, prefixArtwork); ok {
		return Action{Kind: ActionArtwork, ID: id}
	}
	if id, ok := idAfter(token, prefixPaper); ok {
		return Action{Kind: ActionPaper, ID: id}
	}
	return Action{Kind: ActionUnknown}
}

// Token encodes the action as its button token. ActionUnknown encodes to "".
func (a Action) Token() string {
	switch a.Kind {
	case ActionArtwork:
		return prefixArtwork + strconv.FormatInt(a.ID, 10)
	case ActionPaper:
		return prefixPaper + strconv.FormatInt(a.ID, 10)
	}
	for token, kind := range fixedTokens {
		if kind == a.Kind {
			return token
		}
	}
	return ""
}

func idAfter(token, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok || rest == "" || rest[0] == '+' || rest[0] == '-' {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseCommand recognises "/name arg ..." text. A "@botname" suffix on the
// command name is dropped and the name is lowercased.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

// TextEvent classifies a plain message as a Command or a Text.
func TextEvent(text string) Event {
	if cmd, ok := ParseCommand(text); ok {
		return cmd
	}
	return Text{Body: text}
}
