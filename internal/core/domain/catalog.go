package domain

import "time"

// Category groups products for browsing and reporting.
type Category struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	State       LifecycleState `json:"state"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultCategories is served when neither products nor the category
// collection define any.
var DefaultCategories = []string{"Electronics", "Clothing", "Books", "Home & Garden", "Sports"}

// Supplier is a vendor products are purchased from.
type Supplier struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	ContactPerson string         `json:"contact_person"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address,omitempty"`
	City          string         `json:"city,omitempty"`
	Country       string         `json:"country,omitempty"`
	State         LifecycleState `json:"state"`
	CreatedBy     string         `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
