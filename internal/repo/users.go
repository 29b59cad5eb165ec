package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beanery/order-service/internal/entities"
	"github.com/google/uuid"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type usersRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewUsersRepo(db *sqlx.DB) *usersRepo {
	return &usersRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *usersRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (entities.User, error) {
	query, args := r.qb.Select("id", "name", "email", "role", "is_guest").
		From("users").
		Where(sq.Eq{"id": userID}).
		MustSql()

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return UserToEntity(user), nil
}
