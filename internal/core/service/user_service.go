package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/core/rbac"
)

const minPasswordLength = 6

// UserService manages operator accounts.
type UserService struct {
	uow   ports.UnitOfWork
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(uow ports.UnitOfWork, users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		uow:   uow,
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	switch {
	case in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "":
		return nil, domain.Invalid(nil, "username, email, first name and last name are required")
	case len(in.Password) < minPasswordLength:
		return nil, domain.Invalid(nil, "password must be at least %d characters", minPasswordLength)
	case !validEmail(in.Email):
		return nil, domain.Invalid(nil, "invalid email %q", in.Email)
	case !rbac.ValidRole(in.Role):
		return nil, domain.Invalid(domain.ErrInvalidRole, "%q", in.Role)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		State:        domain.StateActive,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, domain.Persistence("create user", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Str("created_by", in.CreatedBy).Msg("user created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, domain.Persistence("get user", err)
	}
	return u, nil
}

// ListUsers returns active users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, domain.Persistence("list users", err)
	}
	return users, nil
}

// UpdateUser applies a partial update. An actor cannot deactivate or demote
// themselves, and the last active admin can never lose that status.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var upd ports.UserUpdate

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if !validEmail(email) {
			return nil, domain.Invalid(nil, "invalid email %q", *in.Email)
		}
		upd.Email = &email
	}
	upd.FirstName = in.FirstName
	upd.LastName = in.LastName

	losesAdmin := false
	if in.Role != nil && *in.Role != current.Role {
		if !rbac.ValidRole(*in.Role) {
			return nil, domain.Invalid(domain.ErrInvalidRole, "%q", *in.Role)
		}
		if id == in.ActorID {
			return nil, domain.ErrSelfModification
		}
		upd.Role = in.Role
		losesAdmin = current.Role == domain.RoleAdmin
	}

	if in.Active != nil {
		state := domain.StateArchived
		if *in.Active {
			state = domain.StateActive
		}
		if state != current.State {
			if state == domain.StateArchived && id == in.ActorID {
				return nil, domain.ErrSelfModification
			}
			upd.State = &state
			losesAdmin = losesAdmin || (state == domain.StateArchived && current.Role == domain.RoleAdmin)
		}
	}

	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, domain.Invalid(nil, "password must be at least %d characters", minPasswordLength)
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	var updated *domain.User
	if losesAdmin && current.IsActive() {
		err = s.withAnotherAdmin(ctx, func(ctx context.Context, users ports.UserRepository) error {
			var uerr error
			updated, uerr = users.Update(ctx, id, upd)
			return uerr
		})
	} else {
		updated, err = s.users.Update(ctx, id, upd)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrLastAdmin) {
			return nil, err
		}
		return nil, domain.Persistence("update user", err)
	}

	s.log.Info().Str("user_id", id).Str("actor_id", in.ActorID).Msg("user updated")
	return updated, nil
}

// DeleteUser archives the account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return domain.ErrSelfModification
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsActive() {
		return nil
	}

	archived := domain.StateArchived
	archive := func(ctx context.Context, users ports.UserRepository) error {
		_, err := users.Update(ctx, id, ports.UserUpdate{State: &archived})
		return err
	}
	if current.Role == domain.RoleAdmin {
		err = s.withAnotherAdmin(ctx, archive)
	} else {
		err = archive(ctx, s.users)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrLastAdmin) {
			return err
		}
		return domain.Persistence("archive user", err)
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("user archived")
	return nil
}

// withAnotherAdmin runs fn in a transaction that first locks the admin set
// and checks that at least one other active admin remains.
func (s *UserService) withAnotherAdmin(ctx context.Context, fn func(ctx context.Context, users ports.UserRepository) error) error {
	return s.uow.Do(ctx, func(ctx context.Context, tx ports.TxRepositories) error {
		users := tx.Users()
		if err := users.LockAdmins(ctx); err != nil {
			return fmt.Errorf("lock admins: %w", err)
		}
		n, err := users.CountActiveAdmins(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if n <= 1 {
			return domain.ErrLastAdmin
		}
		return fn(ctx, users)
	})
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
