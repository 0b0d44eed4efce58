// Package user implements the User repository using PostgreSQL.
package user

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

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

var userColumns = []string{"id", "display_name"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a user by platform id.
func (r *Repo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query, args, err := postgres.Psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build query: %w", err)
	}

	u, err := scanUser(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.User{}, postgres.MapError(err, "user", id)
	}
	return u, nil
}

// Upsert inserts the user or refreshes its display name. A nil display name
// never erases a known one.
func (r *Repo) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	query, args, err := postgres.Psql.
		Insert("users").
		Columns(userColumns...).
		Values(u.ID, ptrStringToPgText(u.DisplayName)).
		Suffix("ON CONFLICT (id) DO UPDATE SET display_name = COALESCE(EXCLUDED.display_name, users.display_name)").
		Suffix("RETURNING id, display_name").
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build query: %w", err)
	}

	saved, err := scanUser(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.User{}, postgres.MapError(err, "user", u.ID)
	}
	return saved, nil
}

// SearchByName returns users whose display name contains fragment
// (case-sensitive), ordered by display name byte-wise.
// limit <= 0 means the default of 10.
func (r *Repo) SearchByName(ctx context.Context, fragment string, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	query, args, err := postgres.Psql.
		Select(userColumns...).
		From("users").
		Where(sq.NotEq{"display_name": nil}).
		Where(sq.Expr("strpos(display_name, ?) > 0", fragment)).
		OrderBy(`display_name COLLATE "C"`, "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		id   int64
		name pgtype.Text
	)
	if err := row.Scan(&id, &name); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: id, DisplayName: pgTextToPtr(name)}, nil
}

// pgTextToPtr returns a *string (nil when NULL).
func pgTextToPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

// ptrStringToPgText converts a *string to pgtype.Text (nil → NULL).
func ptrStringToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
