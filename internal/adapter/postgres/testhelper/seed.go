package testhelper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// idSeq hands out platform user IDs that do not collide across tests sharing
// the container. Seeded from the clock so reruns against a reused DB stay unique.
var idSeq atomic.Int64

func init() {
	idSeq.Store(time.Now().UnixNano() / 1000)
}

// NextID returns a fresh platform user ID.
func NextID() int64 {
	return idSeq.Add(1)
}

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with a unique display name ("artist-<suffix>").
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	name := "artist-" + uniqueSuffix()
	return SeedNamedUser(t, pool, name)
}

// SeedNamedUser creates a user with the given display name.
func SeedNamedUser(t *testing.T, pool *pgxpool.Pool, name string) domain.User {
	t.Helper()

	user := domain.User{ID: NextID(), DisplayName: &name}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, display_name) VALUES ($1, $2)`,
		user.ID, user.DisplayName,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}
	return user
}

// SeedPaper creates a paper balance row for the owner.
func SeedPaper(t *testing.T, pool *pgxpool.Pool, ownerID int64, name string, qty int) domain.PaperStock {
	t.Helper()

	p := domain.PaperStock{OwnerID: ownerID, Name: name, Quantity: qty}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO paper_balance (user_id, name, quantity) VALUES ($1, $2, $3) RETURNING id`,
		ownerID, name, qty,
	).Scan(&p.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedPaper insert: %v", err)
	}
	return p
}

// SeedArtwork creates an artwork for the owner. A nil icon leaves the column NULL.
func SeedArtwork(t *testing.T, pool *pgxpool.Pool, ownerID int64, name string, icon *string) domain.Artwork {
	t.Helper()

	a := domain.Artwork{OwnerID: ownerID, Name: name, Icon: icon}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO artworks (user_id, name, icon) VALUES ($1, $2, $3) RETURNING id`,
		ownerID, name, icon,
	).Scan(&a.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedArtwork insert: %v", err)
	}
	return a
}
