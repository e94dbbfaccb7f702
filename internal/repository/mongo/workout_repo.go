package mongo

import (
	"context"
	"errors"
	"time"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository.
// Workouts are routed by userId; every write replaces the whole document.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Get retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) Get(ctx context.Context, id domain.ID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetAll returns every workout of every owner.
func (r *mongoWorkoutRepository) GetAll(ctx context.Context) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{})
}

// GetAllByOwner returns the owner's workouts, oldest first.
func (r *mongoWorkoutRepository) GetAllByOwner(ctx context.Context, ownerID domain.ID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"userId": ownerID})
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Put writes the whole workout document.
//
// A workout with Version 0 is inserted; if the id is already taken by the same
// owner the stored document is replaced instead. Any other version is a
// compare-and-set on the stored version.
func (r *mongoWorkoutRepository) Put(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	if workout.ID.IsZero() || workout.UserID.IsZero() {
		return nil, errors.New("workout requires id and userId")
	}

	next := workout.Clone()
	now := time.Now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	key := bson.M{"_id": next.ID, "userId": next.UserID}

	expected := workout.Version
	if expected == 0 {
		next.Version = 1
		_, err := r.collection.InsertOne(ctx, next)
		if err == nil {
			return next, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		// 1. Create failed because the document exists: replace it.
		expected, err = storedVersion(ctx, r.collection, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// id exists under a different owner
				return nil, repository.ErrDuplicate
			}
			return nil, err
		}
	}

	next.Version = expected + 1
	if err := replaceVersioned(ctx, r.collection, key, expected, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes the workout if it exists and belongs to ownerID.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, ownerID domain.ID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// owner listing, sorted by creation
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// narrows exercise lookups to the documents that embed them
			Keys:    bson.D{{Key: "exercises.id", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
