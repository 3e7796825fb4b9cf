package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/retailpos/pos-system/internal/core/rbac"
)

func gate(t *testing.T, role string, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRequirePermission_Allows(t *testing.T) {
	rec, called := gate(t, "cashier", RequirePermission(rbac.DefaultPolicy(), rbac.POSAccess))

	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_ViewerDeniedPOS(t *testing.T) {
	rec, called := gate(t, "viewer", RequirePermission(rbac.DefaultPolicy(), rbac.POSAccess))

	if called {
		t.Fatalf("handler ran for a denied role")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission_AdminHasNoPOSAccess(t *testing.T) {
	rec, called := gate(t, "admin", RequirePermission(rbac.DefaultPolicy(), rbac.POSAccess))

	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected admin to be denied pos.access, got %d", rec.Code)
	}
}

func TestRequirePermission_UnknownRole(t *testing.T) {
	rec, called := gate(t, "guest", RequirePermission(rbac.DefaultPolicy(), rbac.ReportsView))

	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission_MissingClaims(t *testing.T) {
	rec, called := gate(t, "", RequirePermission(rbac.DefaultPolicy(), rbac.ReportsView))

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAny(t *testing.T) {
	policy := rbac.DefaultPolicy()
	mw := RequireAny(policy, rbac.ProductsView, rbac.POSAccess)

	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"cashier", http.StatusOK},
		{"inventory_manager", http.StatusOK},
		{"viewer", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			rec, _ := gate(t, tc.role, mw)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequireAny_NilPolicyDenies(t *testing.T) {
	rec, called := gate(t, "admin", RequireAny(nil, rbac.ReportsView))

	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
