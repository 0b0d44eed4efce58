package domain

// PaperStock is one stock line of paper owned by an artist. Several lines
// may share the same name; additions never merge into an existing line.
type PaperStock struct {
	ID       int64
	OwnerID  int64
	Name     string
	Quantity int
}

// Artwork is a print-ready work registered for an artist.
// Icon is a data-URI prefixed base64 JPEG, nil when no thumbnail exists.
type Artwork struct {
	ID      int64
	OwnerID int64
	Name    string
	Icon    *string
}

// HasStock reports whether any of the given lines has a positive quantity.
func HasStock(papers []PaperStock) bool {
	for _, p := range papers {
		if p.Quantity > 0 {
			return true
		}
	}
	return false
}
