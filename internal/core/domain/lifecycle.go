package domain

// LifecycleState replaces hard deletion for every catalog and account
// entity. Archived records stay referenceable from historical sales.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateArchived LifecycleState = "archived"
)

func (s LifecycleState) Valid() bool {
	return s == StateActive || s == StateArchived
}
