package domain

import "time"

// Order is an append-only print order. ArtworkName and PaperName are
// snapshots taken at commit time, not references.
type Order struct {
	ID          int64
	OwnerID     int64
	ArtworkName string
	PaperName   string
	Copies      int
	Status      OrderStatus
	CreatedAt   time.Time
}

// OrderDraft is everything needed to commit an order.
type OrderDraft struct {
	OwnerID     int64
	ArtworkID   int64
	ArtworkName string
	PaperID     int64
	PaperName   string
	Copies      int
}

// OrderNotice is what the atelier is told about a committed order.
type OrderNotice struct {
	Order       Order
	ArtistID    int64
	ArtistName  string
	ArtworkIcon *string
}
