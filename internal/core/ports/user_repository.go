package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// UserUpdate is the set of account fields an update may change.
type UserUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	Role         *string
	State        *domain.LifecycleState
	PasswordHash *string
}

// UserRepository defines persistence for operator accounts.
type UserRepository interface {
	// Create fails with ErrUserExists when the username or email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	CountActiveAdmins(ctx context.Context) (int64, error)
	// LockAdmins takes a write on a shared document so that two transactions
	// changing admin accounts cannot both commit.
	LockAdmins(ctx context.Context) error
}
