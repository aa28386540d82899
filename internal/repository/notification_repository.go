package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditkit/revision-service/internal/domain"
)

type alertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository builds the postgres alert repository.
func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &alertRepository{pool: pool}
}

const alertColumns = `id, card_id, condition, above_goal, channels, creator_name, archived, created_at, updated_at`

func (r *alertRepository) Create(ctx context.Context, a *domain.Alert) error {
	const query = `
        INSERT INTO alerts (card_id, condition, above_goal, channels, creator_name)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		a.CardID,
		a.Condition,
		a.AboveGoal,
		jsonList(a.Channels),
		a.CreatorName,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *alertRepository) Get(ctx context.Context, id int64) (*domain.Alert, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, notFound(pgx.ErrNoRows, "alert %d", id)
	}
	return &alerts[0], nil
}

func (r *alertRepository) ListActive(ctx context.Context) ([]domain.Alert, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts WHERE NOT archived ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *alertRepository) UpdateChannels(ctx context.Context, id int64, channels []domain.Channel) error {
	const query = `UPDATE alerts SET channels=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, jsonList(channels), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "alert %d", id)
	}
	return nil
}

func (r *alertRepository) Archive(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE alerts SET archived=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "alert %d", id)
	}
	return nil
}

func scanAlerts(rows pgx.Rows) ([]domain.Alert, error) {
	var result []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID,
			&a.CardID,
			&a.Condition,
			&a.AboveGoal,
			&a.Channels,
			&a.CreatorName,
			&a.Archived,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository builds the postgres subscription repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, dashboard_id, channels, filters, creator_name, archived, last_sent_at, created_at, updated_at`

func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (dashboard_id, channels, filters, creator_name, last_sent_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.DashboardID,
		jsonList(s.Channels),
		jsonList(s.Filters),
		s.CreatorName,
		s.LastSentAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *subscriptionRepository) Get(ctx context.Context, id int64) (*domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs, err := scanSubscriptions(rows)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, notFound(pgx.ErrNoRows, "subscription %d", id)
	}
	return &subs[0], nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE NOT archived ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *subscriptionRepository) Archive(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE subscriptions SET archived=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "subscription %d", id)
	}
	return nil
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	var result []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(
			&s.ID,
			&s.DashboardID,
			&s.Channels,
			&s.Filters,
			&s.CreatorName,
			&s.Archived,
			&s.LastSentAt,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// jsonList keeps NOT NULL jsonb array columns populated.
func jsonList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
