package storage

import (
	"context"
	"errors"

	"usermgmt/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a username uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures the persistence operations needed by handlers.
// Username uniqueness is the store's responsibility: CreateUser and
// UpdateUser return ErrAlreadyExists on a conflict instead of relying on
// callers to check first.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	// ListExcludingRole returns users whose role differs from excludedRole,
	// optionally narrowed to an exact username match when username is
	// non-empty.
	ListExcludingRole(ctx context.Context, excludedRole, username string) ([]models.User, error)
}
