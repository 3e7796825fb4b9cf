package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "65f0c0ffee0000000000aa01",
		"username": "alice",
		"role":     "cashier",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

// runAuth executes the Auth middleware and renders any returned error through
// echo's default handler so the recorder holds the final status.
func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth("secret")(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	called := false
	rec := runAuth(t, "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims()), func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "65f0c0ffee0000000000aa01" {
			t.Fatalf("user_id not set")
		}
		if c.Get(CtxUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(CtxRole) != "cashier" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	noRole := validClaims()
	delete(noRole, "role")

	noSub := validClaims()
	delete(noSub, "sub")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer not-a-token"},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, expired)},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, noExp)},
		{"no role", "Bearer " + signToken(t, jwt.SigningMethodHS256, noRole)},
		{"no subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, noSub)},
		{"other algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS512, validClaims())},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := runAuth(t, tc.header, mustNotRun(t))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := runAuth(t, "Bearer "+signed, mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
