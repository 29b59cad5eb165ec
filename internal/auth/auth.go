package auth

import (
	"context"
	"errors"
	"time"

	"github.com/beanery/order-service/internal/entities"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity — проверенная личность запроса: кто и с какой ролью
type Identity struct {
	UserID uuid.UUID
	Role   entities.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == entities.RoleAdmin
}

var ErrInvalidToken = errors.New("invalid token")

// VerifyToken проверяет HS256 bearer-токен и возвращает личность запроса
func VerifyToken(secret, tokenStr string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	switch entities.Role(role) {
	case entities.RoleCustomer, entities.RoleAdmin:
	default:
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, Role: entities.Role(role)}, nil
}

// NewToken выпускает токен для пользователя, используется в тестах и тулинге
func NewToken(secret string, user entities.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
