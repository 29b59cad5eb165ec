package entities

import (
	"errors"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User — внешняя сущность, сервис заказов её только читает
type User struct {
	ID      uuid.UUID
	Name    string
	Email   string
	Role    Role
	IsGuest bool
}

var ErrUserNotFound = errors.New("user not found")
