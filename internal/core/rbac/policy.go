// Package rbac decides whether a role may use a capability.
//
// A Policy is built once at process start and shared read-only by every
// permission check. It has no mutating methods; the table it was built from
// is copied so later changes to the caller's map are not observed.
package rbac

import (
	"sort"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// Role is one of the fixed operator roles.
type Role string

const (
	Admin            Role = domain.RoleAdmin
	Cashier          Role = domain.RoleCashier
	InventoryManager Role = domain.RoleInventoryManager
	Viewer           Role = domain.RoleViewer
)

// Capability is a permission token of the form "<area>.<action>".
type Capability string

const (
	ProductsCreate  Capability = "products.create"
	ProductsUpdate  Capability = "products.update"
	ProductsDelete  Capability = "products.delete"
	ProductsView    Capability = "products.view"
	UsersCreate     Capability = "users.create"
	UsersUpdate     Capability = "users.update"
	UsersDelete     Capability = "users.delete"
	UsersView       Capability = "users.view"
	SuppliersCreate Capability = "suppliers.create"
	SuppliersUpdate Capability = "suppliers.update"
	SuppliersDelete Capability = "suppliers.delete"
	SuppliersView   Capability = "suppliers.view"
	ReportsView     Capability = "reports.view"
	DashboardView   Capability = "dashboard.view"
	InventoryView   Capability = "inventory.view"
	InventoryUpdate Capability = "inventory.update"
	PurchasesCreate Capability = "purchases.create"
	PurchasesView   Capability = "purchases.view"
	POSAccess       Capability = "pos.access"
	SalesCreate     Capability = "sales.create"
	SalesView       Capability = "sales.view"
	SalesRefund     Capability = "sales.refund"
)

// DefaultTable is the role table the product ships with.
func DefaultTable() map[Role][]Capability {
	return map[Role][]Capability{
		Admin: {
			ProductsCreate, ProductsUpdate, ProductsDelete, ProductsView,
			UsersCreate, UsersUpdate, UsersDelete, UsersView,
			SuppliersCreate, SuppliersUpdate, SuppliersDelete, SuppliersView,
			ReportsView, DashboardView, InventoryView, SalesRefund,
		},
		Cashier: {POSAccess, SalesCreate, SalesView},
		InventoryManager: {
			ProductsCreate, ProductsUpdate, ProductsDelete, ProductsView,
			InventoryView, InventoryUpdate,
			PurchasesCreate, PurchasesView,
			SuppliersView, ReportsView, DashboardView,
		},
		// Viewer can only read reports.
		Viewer: {ReportsView},
	}
}

// Policy is an immutable role to capability-set table.
type Policy struct {
	grants map[Role]map[Capability]struct{}
}

// NewPolicy builds a Policy from table.
func NewPolicy(table map[Role][]Capability) *Policy {
	grants := make(map[Role]map[Capability]struct{}, len(table))
	for role, caps := range table {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		grants[role] = set
	}
	return &Policy{grants: grants}
}

// DefaultPolicy returns a Policy built from DefaultTable.
func DefaultPolicy() *Policy { return NewPolicy(DefaultTable()) }

// HasPermission reports whether role holds capability. Unknown roles, empty
// input and a nil Policy all deny.
func (p *Policy) HasPermission(role Role, capability Capability) bool {
	if p == nil {
		return false
	}
	_, ok := p.grants[role][capability]
	return ok
}

// HasAny reports whether role holds at least one of caps.
func (p *Policy) HasAny(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if p.HasPermission(role, c) {
			return true
		}
	}
	return false
}

// Capabilities returns the sorted capabilities held by role.
func (p *Policy) Capabilities(role Role) []Capability {
	if p == nil {
		return nil
	}
	set := p.grants[role]
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roles returns the sorted roles the policy knows about.
func (p *Policy) Roles() []Role {
	if p == nil {
		return nil
	}
	out := make([]Role, 0, len(p.grants))
	for r := range p.grants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidRole reports whether s names one of the fixed roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case Admin, Cashier, InventoryManager, Viewer:
		return true
	}
	return false
}
