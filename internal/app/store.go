package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"agencydesk/internal/config"
	"agencydesk/internal/repositories"
)

// Store is the opened deal and finance storage for the configured driver.
type Store struct {
	Deals   repositories.DealRepository
	Finance repositories.FinanceRepository

	sql   *sql.DB
	mongo *mongo.Client
	mdb   *mongo.Database
}

func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Store{
			Deals:   repositories.NewDealRepository(db),
			Finance: repositories.NewFinanceRepository(db),
			sql:     db,
		}, nil

	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		mdb := client.Database(cfg.MongoDB)
		return &Store{
			Deals:   repositories.NewMongoDealRepository(mdb),
			Finance: repositories.NewMongoFinanceRepository(mdb),
			mongo:   client,
			mdb:     mdb,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Migrate creates the tables or the mongo indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if s.sql != nil {
		return repositories.Migrate(ctx, s.sql)
	}
	return repositories.EnsureMongoIndexes(ctx, s.mdb)
}

func (s *Store) Close(ctx context.Context) error {
	if s.sql != nil {
		return s.sql.Close()
	}
	if s.mongo != nil {
		return s.mongo.Disconnect(ctx)
	}
	return nil
}
