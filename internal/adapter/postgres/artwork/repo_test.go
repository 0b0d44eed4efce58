package artwork_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/artwork"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := artwork.New(pool)
	ctx := context.Background()
	owner := testhelper.SeedUser(t, pool)

	icon := "data:image/jpeg;base64,AAAA"
	created, err := repo.Create(ctx, owner.ID, "Lotus", &icon)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, created.OwnerID)
	assert.Equal(t, "Lotus", created.Name)
	require.NotNil(t, created.Icon)
	assert.Equal(t, icon, *created.Icon)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestRepo_Create_WithoutIcon(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := artwork.New(pool)
	owner := testhelper.SeedUser(t, pool)

	created, err := repo.Create(context.Background(), owner.ID, "Crane", nil)
	require.NoError(t, err)
	assert.Nil(t, created.Icon)
}

func TestRepo_Create_UnknownOwner(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := artwork.New(pool)

	_, err := repo.Create(context.Background(), testhelper.NextID(), "Orphan", nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestRepo_ListByOwner(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := artwork.New(pool)
	owner := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)

	icon := "data:image/jpeg;base64,BBBB"
	first := testhelper.SeedArtwork(t, pool, owner.ID, "Lotus", &icon)
	second := testhelper.SeedArtwork(t, pool, owner.ID, "Crane", nil)
	testhelper.SeedArtwork(t, pool, other.ID, "Foreign", nil)

	got, err := repo.ListByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Nil(t, got[0].Icon, "list omits icons")
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := artwork.New(pool)

	_, err := repo.GetByID(context.Background(), 1<<40)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
