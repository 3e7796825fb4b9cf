package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// CreateUserInput carries a new operator account.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	CreatedBy string
}

// UpdateUserInput carries an account update. ActorID is the caller and is
// used to refuse self-deactivation.
type UpdateUserInput struct {
	ActorID   string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	Active    *bool
	Password  *string
}

// UserService defines account management use cases.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}
