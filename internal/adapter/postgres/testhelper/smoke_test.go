package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	user := SeedUser(t, pool)
	paper := SeedPaper(t, pool, user.ID, "A4 matte", 5)

	var name string
	err := pool.QueryRow(
		context.Background(),
		`SELECT display_name FROM users WHERE id = $1`,
		user.ID,
	).Scan(&name)
	if err != nil {
		t.Fatalf("expected user in DB, got error: %v", err)
	}
	if name != *user.DisplayName {
		t.Fatalf("expected display name %q, got %q", *user.DisplayName, name)
	}

	var qty int
	err = pool.QueryRow(
		context.Background(),
		`SELECT quantity FROM paper_balance WHERE id = $1`,
		paper.ID,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("expected paper in DB, got error: %v", err)
	}
	if qty != 5 {
		t.Fatalf("expected quantity 5, got %d", qty)
	}
}
