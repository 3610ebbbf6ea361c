// Package mongo stores users and tasks in MongoDB. Collection names match
// the ones the original mongoose models used, so an existing database can be
// served as is.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/todo-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	tasksCollection = "todos"

	disconnectTimeout = 5 * time.Second
)

// DB wraps a connected client and implements domain.Database.
type DB struct {
	client   *mongo.Client
	database *mongo.Database

	users *UserRepository
	tasks *TaskRepository
}

// New creates a client for uri and selects database. The driver connects
// lazily; call Ping to verify the server is reachable.
func New(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	db := &DB{
		client:   client,
		database: client.Database(database),
	}
	db.users = NewUserRepository(db.database)
	db.tasks = NewTaskRepository(db.database)
	return db, nil
}

// Migrate creates the indexes the repositories rely on. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = db.database.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("created_at"),
	})
	if err != nil {
		return fmt.Errorf("create todos createdAt index: %w", err)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *DB) Users() domain.UserRepository {
	return db.users
}

func (db *DB) Tasks() domain.TaskRepository {
	return db.tasks
}

// now matches the millisecond precision BSON dates are stored with, so a
// record returned from a write equals the one read back later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
