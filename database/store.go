package database

import (
	"context"
	"fmt"

	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
)

// Stores bundles the repositories of one backend
type Stores struct {
	Predictions interfaces.PredictionStore
	Users       interfaces.UserStore
	Backend     string
	closer      func() error
}

// Close releases the backend connection, if any
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewMemoryStores returns process-local repositories
func NewMemoryStores() *Stores {
	return &Stores{
		Predictions: NewMemoryPredictionRepository(),
		Users:       NewMemoryUserRepository(),
		Backend:     "memory",
	}
}

// Open connects to the backend named by cfg.Driver
func Open(ctx context.Context, cfg Config) (*Stores, error) {
	logger := logging.WithPrefix("Store")

	switch cfg.Driver {
	case "", "memory":
		logger.Info("Using in-memory store")
		return NewMemoryStores(), nil

	case "mongo":
		db, err := NewMongoConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users := NewMongoUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			logger.Warnf("Could not create user indexes: %v", err)
		}
		return &Stores{
			Predictions: NewMongoPredictionRepository(ctx, db),
			Users:       users,
			Backend:     "mongo",
			closer:      db.Close,
		}, nil

	case "postgres", "sqlite":
		dsn := cfg.DSN
		if dsn == "" && cfg.Driver == "sqlite" {
			dsn = "file:predictions.db"
		}
		if dsn == "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		}
		db, err := OpenSQL(ctx, cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Predictions: NewSQLPredictionRepository(db),
			Users:       NewSQLUserRepository(db),
			Backend:     cfg.Driver,
			closer:      db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
