package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditkit/revision-service/internal/domain"
)

type collectionRepository struct {
	pool *pgxpool.Pool
}

// NewCollectionRepository builds the postgres collection repository.
func NewCollectionRepository(pool *pgxpool.Pool) CollectionRepository {
	return &collectionRepository{pool: pool}
}

func (r *collectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	const query = `INSERT INTO collections (name) VALUES ($1) RETURNING id`
	return r.pool.QueryRow(ctx, query, c.Name).Scan(&c.ID)
}

func (r *collectionRepository) Get(ctx context.Context, id int64) (*domain.Collection, error) {
	const query = `SELECT id, name FROM collections WHERE id=$1`
	var c domain.Collection
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name); err != nil {
		return nil, notFound(err, "collection %d", id)
	}
	return &c, nil
}
