package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	touched []string
	locks   int
	// countDelay holds CountActiveAdmins open after counting.
	countDelay time.Duration
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ListActive(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.IsActive() {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.State != nil {
		u.State = *upd.State
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, id)
	return nil
}

func (r *stubUserRepo) CountActiveAdmins(_ context.Context) (int64, error) {
	r.mu.Lock()
	var n int64
	for _, u := range r.users {
		if u.IsActive() && u.Role == domain.RoleAdmin {
			n++
		}
	}
	delay := r.countDelay
	r.mu.Unlock()
	time.Sleep(delay)
	return n, nil
}

func (r *stubUserRepo) LockAdmins(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return nil
}

func (r *stubUserRepo) seed(t *testing.T, username, password, role string, state domain.LifecycleState) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := r.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FirstName:    username,
		LastName:     "Test",
		Role:         role,
		State:        state,
	})
	require.NoError(t, err)
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	carol := repo.seed(t, "carol", "s3cret", domain.RoleAdmin, domain.StateActive)
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, user)
	assert.Equal(t, "carol", user.Username)
	assert.NotNil(t, user.LastLogin)
	assert.Equal(t, []string{carol.ID}, repo.touched)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, domain.RoleAdmin, claims["role"])
	assert.Equal(t, carol.ID, claims["sub"])
	assert.Equal(t, "carol", claims["username"])
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "dave", "goodpass", domain.RoleCashier, domain.StateActive)
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "dave", "badpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, repo.touched)
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour, zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "ghost", "pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_ArchivedUserRejected(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed(t, "erin", "pass123", domain.RoleViewer, domain.StateArchived)
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "erin", "pass123")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour, zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
