// Package artwork implements the artwork repository using PostgreSQL.
package artwork

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// Repo provides artwork persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new artwork repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListByOwner returns the owner's artworks in insertion order. Icons are not
// loaded; use GetByID when the thumbnail is needed.
func (r *Repo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Artwork, error) {
	query, args, err := postgres.Psql.
		Select("id", "user_id", "name").
		From("artworks").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	artworks := make([]domain.Artwork, 0)
	for rows.Next() {
		var a domain.Artwork
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	return artworks, nil
}

// GetByID returns one artwork including its icon.
func (r *Repo) GetByID(ctx context.Context, id int64) (domain.Artwork, error) {
	query, args, err := postgres.Psql.
		Select("id", "user_id", "name", "icon").
		From("artworks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("build query: %w", err)
	}

	a, err := scanArtwork(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Artwork{}, postgres.MapError(err, "artwork", id)
	}
	return a, nil
}

// Create inserts an artwork. A nil icon is stored as NULL.
func (r *Repo) Create(ctx context.Context, ownerID int64, name string, icon *string) (domain.Artwork, error) {
	var iconText pgtype.Text
	if icon != nil {
		iconText = pgtype.Text{String: *icon, Valid: true}
	}

	query, args, err := postgres.Psql.
		Insert("artworks").
		Columns("user_id", "name", "icon").
		Values(ownerID, name, iconText).
		Suffix("RETURNING id, user_id, name, icon").
		ToSql()
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("build query: %w", err)
	}

	a, err := scanArtwork(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Artwork{}, postgres.MapError(err, "user", ownerID)
	}
	return a, nil
}

func scanArtwork(row pgx.Row) (domain.Artwork, error) {
	var (
		a    domain.Artwork
		icon pgtype.Text
	)
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &icon); err != nil {
		return domain.Artwork{}, err
	}
	if icon.Valid {
		a.Icon = &icon.String
	}
	return a, nil
}
