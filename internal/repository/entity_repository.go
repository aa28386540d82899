package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditkit/revision-service/internal/domain"
)

type entityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository builds the postgres entity repository.
func NewEntityRepository(pool *pgxpool.Pool) EntityRepository {
	return &entityRepository{pool: pool}
}

func (r *entityRepository) Create(ctx context.Context, s *domain.Snapshot) error {
	const query = `
        INSERT INTO entities (entity_type, collection_id, name, description, content, extensions, archived)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	var id int64
	if err := r.pool.QueryRow(ctx, query,
		s.EntityType,
		s.CollectionID,
		s.Name,
		s.Description,
		jsonObject(s.Content),
		jsonObject(s.Extensions),
		s.Archived,
	).Scan(&id, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.ID = &id
	return nil
}

func (r *entityRepository) Get(ctx context.Context, entityType domain.EntityType, id int64) (*domain.Snapshot, error) {
	const query = `
        SELECT id, entity_type, collection_id, name, description, content, extensions, archived, created_at, updated_at
        FROM entities WHERE entity_type=$1 AND id=$2`
	var (
		s     domain.Snapshot
		rowID int64
	)
	if err := r.pool.QueryRow(ctx, query, entityType, id).Scan(
		&rowID,
		&s.EntityType,
		&s.CollectionID,
		&s.Name,
		&s.Description,
		&s.Content,
		&s.Extensions,
		&s.Archived,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, notFound(err, "%s %d", entityType, id)
	}
	s.ID = &rowID
	return &s, nil
}

func (r *entityRepository) Update(ctx context.Context, s *domain.Snapshot) error {
	if s.ID == nil {
		return fmt.Errorf("update unsaved %s: %w", s.EntityType, ErrNotFound)
	}
	const query = `
        UPDATE entities SET collection_id=$1, name=$2, description=$3, content=$4, extensions=$5,
            archived=$6, updated_at=NOW()
        WHERE entity_type=$7 AND id=$8
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.CollectionID,
		s.Name,
		s.Description,
		jsonObject(s.Content),
		jsonObject(s.Extensions),
		s.Archived,
		s.EntityType,
		*s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return notFound(err, "%s %d", s.EntityType, *s.ID)
}

// jsonObject keeps NOT NULL jsonb columns populated.
func jsonObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}
