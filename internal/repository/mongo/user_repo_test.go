package mongo

import (
	"context"
	"testing"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const usersNS = "fitapp.users"

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and version", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(ctx, &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
		require.NoError(t, err)
		assert.False(t, u.ID.IsZero())
		assert.Equal(t, int64(1), u.Version)
		assert.NotNil(t, u.WorkoutIDs)
	})

	mt.Run("create with taken email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate"}))

		_, err := repo.Create(ctx, &domain.User{Email: "ann@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		u := &domain.User{ID: "u1", Email: "ann@example.com", WorkoutIDs: []domain.ID{"w1"}, Version: 2}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, toDoc(t, u)))

		got, err := repo.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, []domain.ID{"w1"}, got.WorkoutIDs)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "u1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("get all", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		a := &domain.User{ID: "u1", Email: "a@example.com", StreakGoal: 3}
		b := &domain.User{ID: "u2", Email: "b@example.com"}
		first := mtest.CreateCursorResponse(1, usersNS, mtest.FirstBatch, toDoc(t, a))
		second := mtest.CreateCursorResponse(0, usersNS, mtest.NextBatch, toDoc(t, b))
		mt.AddMockResponses(first, second)

		users, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, 3, users[0].StreakGoal)
		assert.Equal(t, domain.ID("u2"), users[1].ID)
	})

	mt.Run("put bumps version", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(replyN(1))

		got, err := repo.Put(ctx, &domain.User{ID: "u1", Email: "ann@example.com", Version: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.Version)
	})

	mt.Run("put conflicts on stale version", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(
			replyN(0),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{{Key: "_id", Value: "u1"}, {Key: "version", Value: int64(3)}}),
		)

		_, err := repo.Put(ctx, &domain.User{ID: "u1", Email: "ann@example.com", Version: 2})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}
