package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresRepositories wires every repository to one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Entities:      NewEntityRepository(pool),
		Revisions:     NewRevisionRepository(pool),
		Collections:   NewCollectionRepository(pool),
		Alerts:        NewAlertRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
	}
}
