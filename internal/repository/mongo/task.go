package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/todo-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Task        string             `bson:"task"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:          d.ID.Hex(),
		Task:        d.Task,
		Description: d.Description,
		Priority:    domain.Priority(d.Priority),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// TaskRepository implements domain.TaskRepository on the todos collection.
type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{collection: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ts := now()
	doc := taskDocument{
		Task:        task.Task,
		Description: task.Description,
		Priority:    string(task.Priority),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert task: unexpected id type %T", res.InsertedID)
	}
	task.ID = id.Hex()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return nil
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc taskDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	oid, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"task":        task.Task,
		"description": task.Description,
		"priority":    string(task.Priority),
		"updatedAt":   now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	*task = doc.toDomain()
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
