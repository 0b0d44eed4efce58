// Package paper implements the paper stock repository using PostgreSQL.
package paper

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

var paperColumns = []string{"id", "user_id", "name", "quantity"}

// Repo provides paper stock persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new paper repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListByOwner returns every stock line of the owner, including empty ones,
// in insertion order.
func (r *Repo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.PaperStock, error) {
	query, args, err := postgres.Psql.
		Select(paperColumns...).
		From("paper_balance").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list paper: %w", err)
	}
	defer rows.Close()

	papers := make([]domain.PaperStock, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list paper: %w", err)
	}
	return papers, nil
}

// GetByID returns one stock line, read live.
func (r *Repo) GetByID(ctx context.Context, id int64) (domain.PaperStock, error) {
	query, args, err := postgres.Psql.
		Select(paperColumns...).
		From("paper_balance").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.PaperStock{}, fmt.Errorf("build query: %w", err)
	}

	p, err := scanPaper(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.PaperStock{}, postgres.MapError(err, "paper", id)
	}
	return p, nil
}

// Add inserts a new stock line. Lines are never merged with an existing
// line of the same name.
func (r *Repo) Add(ctx context.Context, ownerID int64, name string, quantity int) (domain.PaperStock, error) {
	query, args, err := postgres.Psql.
		Insert("paper_balance").
		Columns("user_id", "name", "quantity").
		Values(ownerID, name, quantity).
		Suffix("RETURNING id, user_id, name, quantity").
		ToSql()
	if err != nil {
		return domain.PaperStock{}, fmt.Errorf("build query: %w", err)
	}

	p, err := scanPaper(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.PaperStock{}, postgres.MapError(err, "user", ownerID)
	}
	return p, nil
}

// Decrement atomically subtracts amount from the line's quantity. The guard
// and the write are one statement, so concurrent decrements cannot overdraw.
// Returns *domain.InsufficientStockError with the live quantity when the
// line holds less than amount, domain.ErrNotFound when the line is gone.
func (r *Repo) Decrement(ctx context.Context, id int64, amount int) (domain.PaperStock, error) {
	if amount <= 0 {
		return domain.PaperStock{}, domain.NewValidationError("copies", "must be positive")
	}

	query, args, err := postgres.Psql.
		Update("paper_balance").
		Set("quantity", sq.Expr("quantity - ?", amount)).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"quantity": amount}).
		Suffix("RETURNING id, user_id, name, quantity").
		ToSql()
	if err != nil {
		return domain.PaperStock{}, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	p, err := scanPaper(q.QueryRow(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.PaperStock{}, postgres.MapError(err, "paper", id)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.PaperStock{}, err
	}
	return domain.PaperStock{}, &domain.InsufficientStockError{
		PaperID:   id,
		Requested: amount,
		Available: current.Quantity,
	}
}

func scanPaper(row pgx.Row) (domain.PaperStock, error) {
	var p domain.PaperStock
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Quantity); err != nil {
		return domain.PaperStock{}, err
	}
	return p, nil
}
