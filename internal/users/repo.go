package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid user input")
	ErrUsersExist         = errors.New("users already exist")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	// CreateFirst inserts user only while no user exists.
	CreateFirst(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	Count(ctx context.Context) (int, error)
}
