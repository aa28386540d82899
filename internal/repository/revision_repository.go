package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditkit/revision-service/internal/domain"
)

type revisionRepository struct {
	pool *pgxpool.Pool
}

// NewRevisionRepository builds the postgres revision repository.
func NewRevisionRepository(pool *pgxpool.Pool) RevisionRepository {
	return &revisionRepository{pool: pool}
}

const revisionColumns = `id, entity_type, entity_id, user_id, user_common_name, is_creation, is_reversion,
               description, diff, object, created_at`

func (r *revisionRepository) Create(ctx context.Context, rev *domain.Revision) error {
	const query = `
        INSERT INTO revisions (entity_type, entity_id, user_id, user_common_name, is_creation, is_reversion,
            description, diff, object, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,COALESCE($10, NOW()))
        RETURNING id, created_at`
	var ts any
	if !rev.Timestamp.IsZero() {
		ts = rev.Timestamp
	}
	return r.pool.QueryRow(ctx, query,
		rev.EntityType,
		rev.EntityID,
		rev.User.ID,
		rev.User.CommonName,
		rev.IsCreation,
		rev.IsReversion,
		rev.Description,
		rev.Diff,
		rev.Object,
		ts,
	).Scan(&rev.ID, &rev.Timestamp)
}

func (r *revisionRepository) Get(ctx context.Context, id int64) (*domain.Revision, error) {
	query := `SELECT ` + revisionColumns + ` FROM revisions WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revs, err := scanRevisions(rows)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, notFound(pgx.ErrNoRows, "revision %d", id)
	}
	return &revs[0], nil
}

func (r *revisionRepository) ListByEntity(
	ctx context.Context,
	entityType domain.EntityType,
	entityID int64,
) ([]domain.Revision, error) {
	query := `SELECT ` + revisionColumns + `
        FROM revisions WHERE entity_type=$1 AND entity_id=$2 ORDER BY id DESC`
	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRevisions(rows)
}

func scanRevisions(rows pgx.Rows) ([]domain.Revision, error) {
	var result []domain.Revision
	for rows.Next() {
		var rev domain.Revision
		if err := rows.Scan(
			&rev.ID,
			&rev.EntityType,
			&rev.EntityID,
			&rev.User.ID,
			&rev.User.CommonName,
			&rev.IsCreation,
			&rev.IsReversion,
			&rev.Description,
			&rev.Diff,
			&rev.Object,
			&rev.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, rev)
	}
	return result, rows.Err()
}
