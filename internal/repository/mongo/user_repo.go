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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return nil, errors.New("user email and password hash are required")
	}

	created := user.Clone()
	if created.ID.IsZero() {
		created.ID = domain.NewID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Version = 1
	if created.WorkoutIDs == nil {
		created.WorkoutIDs = []domain.ID{}
	}

	if _, err := r.collection.InsertOne(ctx, created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by id.
func (r *mongoUserRepository) GetByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetAll streams every user document. Used by the weekly streak job.
func (r *mongoUserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Put replaces the user document, guarded by its version.
func (r *mongoUserRepository) Put(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID.IsZero() {
		return nil, errors.New("user id is required for update")
	}
	if user.Version == 0 {
		return r.Create(ctx, user)
	}

	next := user.Clone()
	next.UpdatedAt = time.Now().UTC()
	next.Version = user.Version + 1

	if err := replaceVersioned(ctx, r.collection, bson.M{"_id": next.ID}, user.Version, next); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return next, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id domain.ID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
