package domain

import "time"

const (
	RoleAdmin            = "admin"
	RoleCashier          = "cashier"
	RoleInventoryManager = "inventory_manager"
	RoleViewer           = "viewer"
)

// User models an authenticated operator of the point of sale.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Role         string         `json:"role"`
	State        LifecycleState `json:"state"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) IsActive() bool { return u.State == StateActive }

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
