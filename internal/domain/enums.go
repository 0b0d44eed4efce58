package domain

// OrderStatus is the lifecycle status of a print order.
type OrderStatus string

const (
	OrderStatusNew OrderStatus = "new"
)

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew:
		return true
	}
	return false
}

// State tags the step a user's conversation is currently waiting on.
// The zero value is StateIdle.
type State string

const (
	StateIdle State = ""

	// Order flow (artist side).
	StateChoosingArtwork State = "choosing_artwork"
	StateChoosingPaper   State = "choosing_paper"
	StateEnteringCopies  State = "entering_copies"
	StateConfirming      State = "confirming"

	// Provisioning flows (atelier side).
	StateAwaitingTargetUser  State = "awaiting_target_user"
	StateAwaitingArtworkName State = "awaiting_artwork_name"
	StateAwaitingImage       State = "awaiting_image"
	StateAwaitingPaperName   State = "awaiting_paper_name"
	StateAwaitingQuantity    State = "awaiting_quantity"
)

func (s State) String() string {
	if s == StateIdle {
		return "idle"
	}
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateChoosingArtwork, StateChoosingPaper, StateEnteringCopies, StateConfirming,
		StateAwaitingTargetUser, StateAwaitingArtworkName, StateAwaitingImage,
		StateAwaitingPaperName, StateAwaitingQuantity:
		return true
	}
	return false
}

// IsOrderFlow reports whether s belongs to the artist order flow.
func (s State) IsOrderFlow() bool {
	switch s {
	case StateChoosingArtwork, StateChoosingPaper, StateEnteringCopies, StateConfirming:
		return true
	}
	return false
}

// IsProvisioningFlow reports whether s belongs to an atelier provisioning flow.
func (s State) IsProvisioningFlow() bool {
	switch s {
	case StateAwaitingTargetUser, StateAwaitingArtworkName, StateAwaitingImage,
		StateAwaitingPaperName, StateAwaitingQuantity:
		return true
	}
	return false
}

// ProvisionKind selects which provisioning flow is running.
type ProvisionKind string

const (
	ProvisionArtwork ProvisionKind = "artwork"
	ProvisionPaper   ProvisionKind = "paper"
)

func (k ProvisionKind) String() string { return string(k) }

func (k ProvisionKind) IsValid() bool {
	switch k {
	case ProvisionArtwork, ProvisionPaper:
		return true
	}
	return false
}
