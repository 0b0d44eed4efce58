package domain

import "time"

// Session is the single active conversation of one user.
type Session struct {
	UserID    int64
	State     State
	Data      SessionData
	UpdatedAt time.Time
}

// IsIdle reports whether no flow is active.
func (s Session) IsIdle() bool { return s.State == StateIdle }

// SessionData is the data bag accumulated by a flow. Zero-valued fields are
// unset; Merge only copies fields that are set in the patch.
type SessionData struct {
	// Order flow.
	Artworks []Artwork // snapshot taken when the flow starts
	Artwork  *Artwork
	Paper    *PaperStock
	Copies   int

	// Provisioning flows.
	Kind         ProvisionKind
	TargetUserID int64
	Name         string
}

// Merge returns d with every set field of patch copied over.
func (d SessionData) Merge(patch SessionData) SessionData {
	if patch.Artworks != nil {
		d.Artworks = patch.Artworks
	}
	if patch.Artwork != nil {
		d.Artwork = patch.Artwork
	}
	if patch.Paper != nil {
		d.Paper = patch.Paper
	}
	if patch.Copies != 0 {
		d.Copies = patch.Copies
	}
	if patch.Kind != "" {
		d.Kind = patch.Kind
	}
	if patch.TargetUserID != 0 {
		d.TargetUserID = patch.TargetUserID
	}
	if patch.Name != "" {
		d.Name = patch.Name
	}
	return d
}

// FindArtwork looks up an artwork in the entry snapshot.
func (d SessionData) FindArtwork(id int64) (Artwork, bool) {
	for _, a := range d.Artworks {
		if a.ID == id {
			return a, true
		}
	}
	return Artwork{}, false
}
