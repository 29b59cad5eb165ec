package auth_test

import (
	"testing"
	"time"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestVerifyToken(t *testing.T) {
	user := entities.User{ID: uuid.New(), Role: entities.RoleAdmin}

	t.Run("roundtrip", func(t *testing.T) {
		token, err := auth.NewToken(secret, user, time.Hour)
		require.NoError(t, err)

		identity, err := auth.VerifyToken(secret, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
		assert.Equal(t, entities.RoleAdmin, identity.Role)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.NewToken(secret, user, time.Hour)
		require.NoError(t, err)

		_, err = auth.VerifyToken("other-secret", token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := auth.NewToken(secret, user, -time.Minute)
		require.NoError(t, err)

		_, err = auth.VerifyToken(secret, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.VerifyToken(secret, "not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  uuid.New().String(),
			"role": "superuser",
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = auth.VerifyToken(secret, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  "42",
			"role": string(entities.RoleCustomer),
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = auth.VerifyToken(secret, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
