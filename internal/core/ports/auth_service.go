package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// AuthService authenticates operators and issues bearer tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
