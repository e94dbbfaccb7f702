package mongo

import (
	"context"
	"testing"
	"time"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const workoutsNS = "fitapp.workouts"

func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func sampleWorkout(t *testing.T) *domain.Workout {
	t.Helper()
	w := domain.NewWorkout("w1", "u1", "Push", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ex, err := domain.NewExercise("e1", "Bench Press", domain.TypeWeights, domain.GoalMuscle)
	require.NoError(t, err)
	w.AddExercise(ex)
	return w
}

func replyN(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func TestMongoWorkoutRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get decodes the embedded aggregate", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		w := sampleWorkout(t)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch, toDoc(t, w)))

		got, err := repo.Get(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("u1"), got.UserID)
		require.Len(t, got.Exercises, 1)
		assert.Equal(t, 1.1, got.Exercises[0].Factor)
		assert.Equal(t, 15, got.Exercises[0].MaxReps)
	})

	mt.Run("get missing returns not found", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch))

		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("get all by owner", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		a := sampleWorkout(t)
		b := sampleWorkout(t)
		b.ID = "w2"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch, toDoc(t, a), toDoc(t, b)))

		got, err := repo.GetAllByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.ID("w2"), got[1].ID)
	})

	mt.Run("get all by owner with no documents is empty", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch))

		got, err := repo.GetAllByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	mt.Run("put inserts a new workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		w := sampleWorkout(t)
		got, err := repo.Put(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, int64(0), w.Version)
	})

	mt.Run("put replaces a matching version", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(replyN(1))

		w := sampleWorkout(t)
		w.Version = 3
		got, err := repo.Put(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Version)
	})

	mt.Run("put with a stale version conflicts", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(
			replyN(0),
			mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch, bson.D{{Key: "_id", Value: "w1"}, {Key: "version", Value: int64(5)}}),
		)

		w := sampleWorkout(t)
		w.Version = 3
		_, err := repo.Put(ctx, w)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	mt.Run("put of a deleted workout is not found", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(replyN(0), mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch))

		w := sampleWorkout(t)
		w.Version = 3
		_, err := repo.Put(ctx, w)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("put create falls back to replace on duplicate id", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
			mtest.CreateCursorResponse(0, workoutsNS, mtest.FirstBatch, bson.D{{Key: "_id", Value: "w1"}, {Key: "version", Value: int64(4)}}),
			replyN(1),
		)

		got, err := repo.Put(ctx, sampleWorkout(t))
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Version)
	})

	mt.Run("put rejects a workout without owner", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		w := sampleWorkout(t)
		w.UserID = ""
		_, err := repo.Put(ctx, w)
		assert.Error(t, err)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(t, repo.Delete(ctx, "w1", "u1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.Delete(ctx, "w1", "u1"), repository.ErrNotFound)
	})
}
