package service

import (
	"context"
	"testing"
	"time"

	"cloudnative/fitapp/internal/repository/memory"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.NewUserRepository(), testSecret, time.Hour)

	u, err := svc.Register(ctx, "Ann", " Ann@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.Empty(t, u.WorkoutIDs)
	assert.Equal(t, 0, u.StreakGoal)

	_, err = svc.Register(ctx, "Ann again", "ann@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, logged, err := svc.Login(ctx, "ann@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)

	_, _, err = svc.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(memory.NewUserRepository(), testSecret, time.Hour)

	tests := []struct{ name, email, password string }{
		{"", "ann@example.com", "correct-horse"},
		{"Ann", "not-an-email", "correct-horse"},
		{"Ann", "ann@example.com", "short"},
	}
	for _, tt := range tests {
		_, err := svc.Register(context.Background(), tt.name, tt.email, tt.password)
		assert.ErrorIs(t, err, ErrValidation, "%+v", tt)
	}
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(memory.NewUserRepository(), "", time.Hour) })
}
