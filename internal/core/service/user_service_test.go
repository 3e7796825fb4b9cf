package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

func ptr[T any](v T) *T { return &v }

// userUoW serializes transactions the way the admins lock document does.
type userUoW struct {
	mu   sync.Mutex
	repo *stubUserRepo
	runs int
}

type userTx struct {
	memTx
	users *stubUserRepo
}

func (t userTx) Users() ports.UserRepository { return t.users }

func (u *userUoW) Do(ctx context.Context, fn func(ctx context.Context, tx ports.TxRepositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.runs++
	return fn(ctx, userTx{users: u.repo})
}

func newUserService(repo *stubUserRepo) *UserService {
	return NewUserService(&userUoW{repo: repo}, repo, zerolog.Nop())
}

func validUserInput(username, role string) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:  username,
		Email:     username + "@shop.test",
		Password:  "pass1234",
		FirstName: "First",
		LastName:  "Last",
		Role:      role,
		CreatedBy: "admin-0",
	}
}

func TestUserService_CreateUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	u, err := svc.CreateUser(context.Background(), validUserInput("alice", domain.RoleCashier))
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, u.State)
	assert.NotEqual(t, "pass1234", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pass1234")))

	_, err = svc.CreateUser(context.Background(), validUserInput("alice", domain.RoleCashier))
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	svc := newUserService(newStubUserRepo())

	bad := []ports.CreateUserInput{
		func() ports.CreateUserInput { in := validUserInput("", domain.RoleCashier); return in }(),
		func() ports.CreateUserInput { in := validUserInput("bob", domain.RoleCashier); in.Password = "123"; return in }(),
		func() ports.CreateUserInput { in := validUserInput("bob", domain.RoleCashier); in.Email = "not-an-email"; return in }(),
		validUserInput("bob", "superuser"),
	}
	for _, in := range bad {
		_, err := svc.CreateUser(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
	}

	_, err := svc.CreateUser(context.Background(), validUserInput("bob", "superuser"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestUserService_LastAdminProtected(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)
	root := repo.seed(t, "root", "pass1234", domain.RoleAdmin, domain.StateActive)
	other := repo.seed(t, "other", "pass1234", domain.RoleCashier, domain.StateActive)

	_, err := svc.UpdateUser(context.Background(), root.ID, ports.UpdateUserInput{ActorID: other.ID, Role: ptr(domain.RoleViewer)})
	assert.ErrorIs(t, err, domain.ErrLastAdmin)

	_, err = svc.UpdateUser(context.Background(), root.ID, ports.UpdateUserInput{ActorID: other.ID, Active: ptr(false)})
	assert.ErrorIs(t, err, domain.ErrLastAdmin)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), other.ID, root.ID), domain.ErrLastAdmin)

	second := repo.seed(t, "second", "pass1234", domain.RoleAdmin, domain.StateActive)
	require.NoError(t, svc.DeleteUser(context.Background(), second.ID, root.ID))

	u, err := repo.FindByID(context.Background(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateArchived, u.State)
}

func TestUserService_SelfModificationForbidden(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)
	a := repo.seed(t, "a", "pass1234", domain.RoleAdmin, domain.StateActive)
	repo.seed(t, "b", "pass1234", domain.RoleAdmin, domain.StateActive)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), a.ID, a.ID), domain.ErrSelfModification)

	_, err := svc.UpdateUser(context.Background(), a.ID, ports.UpdateUserInput{ActorID: a.ID, Active: ptr(false)})
	assert.ErrorIs(t, err, domain.ErrSelfModification)

	_, err = svc.UpdateUser(context.Background(), a.ID, ports.UpdateUserInput{ActorID: a.ID, Role: ptr(domain.RoleCashier)})
	assert.ErrorIs(t, err, domain.ErrSelfModification)

	updated, err := svc.UpdateUser(context.Background(), a.ID, ports.UpdateUserInput{ActorID: a.ID, FirstName: ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
}

func TestUserService_UpdatePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)
	u := repo.seed(t, "pat", "pass1234", domain.RoleCashier, domain.StateActive)

	_, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{ActorID: "admin", Password: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{ActorID: "admin", Password: ptr("newpass99")})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpass99")))
}

func TestUserService_ListUsersSkipsArchived(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)
	repo.seed(t, "live", "pass1234", domain.RoleCashier, domain.StateActive)
	repo.seed(t, "gone", "pass1234", domain.RoleCashier, domain.StateArchived)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "live", users[0].Username)
}

func TestUserService_ConcurrentAdminRemovalKeepsOne(t *testing.T) {
	repo := newStubUserRepo()
	uow := &userUoW{repo: repo}
	svc := NewUserService(uow, repo, zerolog.Nop())
	a := repo.seed(t, "ada", "pass1234", domain.RoleAdmin, domain.StateActive)
	b := repo.seed(t, "bea", "pass1234", domain.RoleAdmin, domain.StateActive)
	repo.countDelay = 20 * time.Millisecond

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = svc.DeleteUser(context.Background(), b.ID, a.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.UpdateUser(context.Background(), b.ID, ports.UpdateUserInput{ActorID: a.ID, Role: ptr(domain.RoleCashier)})
	}()
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrLastAdmin)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	n, err := repo.CountActiveAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, repo.locks)
	assert.Equal(t, 2, uow.runs)
}

func TestUserService_NonAdminChangesSkipTransaction(t *testing.T) {
	repo := newStubUserRepo()
	uow := &userUoW{repo: repo}
	svc := NewUserService(uow, repo, zerolog.Nop())
	repo.seed(t, "root", "pass1234", domain.RoleAdmin, domain.StateActive)
	c := repo.seed(t, "cy", "pass1234", domain.RoleCashier, domain.StateActive)

	_, err := svc.UpdateUser(context.Background(), c.ID, ports.UpdateUserInput{ActorID: "admin", Role: ptr(domain.RoleViewer)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(context.Background(), "admin", c.ID))
	assert.Zero(t, uow.runs)
	assert.Zero(t, repo.locks)
}
