// Package order implements the append-only order repository using PostgreSQL.
package order

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres"
	"github.com/heartmarshall/atelier-bot/internal/domain"
)

const returningOrder = "RETURNING id, user_id, artwork_name, paper_name, copies, status, created_at"

// Repo provides order persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new order repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts an order. A zero CreatedAt lets the database stamp it.
func (r *Repo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	ins := postgres.Psql.Insert("orders")
	if o.CreatedAt.IsZero() {
		ins = ins.
			Columns("user_id", "artwork_name", "paper_name", "copies", "status").
			Values(o.OwnerID, o.ArtworkName, o.PaperName, o.Copies, string(o.Status))
	} else {
		ins = ins.
			Columns("user_id", "artwork_name", "paper_name", "copies", "status", "created_at").
			Values(o.OwnerID, o.ArtworkName, o.PaperName, o.Copies, string(o.Status), o.CreatedAt)
	}

	query, args, err := ins.Suffix(returningOrder).ToSql()
	if err != nil {
		return domain.Order{}, fmt.Errorf("build query: %w", err)
	}

	saved, err := scanOrder(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Order{}, postgres.MapError(err, "order for user", o.OwnerID)
	}
	return saved, nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *Repo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Order, error) {
	query, args, err := postgres.Psql.
		Select("id", "user_id", "artwork_name", "paper_name", "copies", "status", "created_at").
		From("orders").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.OwnerID, &o.ArtworkName, &o.PaperName, &o.Copies, &status, &o.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}
