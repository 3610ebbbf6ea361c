package domain

import "context"

// Database defines lifecycle operations for the underlying store and
// exposes its repositories. Each implementation (MongoDB, SQLite) owns its
// own schema setup, so the backend is swappable from configuration.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	Users() UserRepository
	Tasks() TaskRepository
}
