// Package repository selects and connects the configured storage backend.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/todo-api/internal/config"
	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/repository/mongo"
	"github.com/msomdec/todo-api/internal/repository/sqlite"
	"github.com/sethvargo/go-retry"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
	pingTimeout     = 3 * time.Second
)

// Open connects the backend named by cfg.Driver and waits for it to answer
// a ping, retrying with exponential backoff while the server comes up.
// Schema setup is left to the caller (domain.Database.Migrate).
func Open(ctx context.Context, cfg config.StoreConfig) (domain.Database, error) {
	var (
		db  domain.Database
		err error
	)
	switch cfg.Driver {
	case config.DriverMongo:
		db, err = mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite:
		db, err = sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewExponential(connectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.Ping(pingCtx); err != nil {
			slog.Warn("store not reachable yet", "driver", cfg.Driver, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s store: %w", cfg.Driver, err)
	}

	slog.Info("store connected", "driver", cfg.Driver)
	return db, nil
}
