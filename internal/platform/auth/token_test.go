package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testAddr = "0x5d4281e40bef3e5944144c87095a6e7c8bbd28e6"

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testAddr, RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Address != testAddr {
		t.Errorf("expected %s, got %s", testAddr, claims.Address)
	}
	if claims.Role != string(RoleDoctor) {
		t.Errorf("expected doctor, got %s", claims.Role)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, _ := NewTokenIssuer("secret-a", time.Hour).Issue(testAddr, RolePatient)
	if _, err := NewTokenIssuer("secret-b", time.Hour).Parse(token); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}

func TestParse_Expired(t *testing.T) {
	token, _ := NewTokenIssuer("test-secret", -time.Minute).Issue(testAddr, RolePatient)
	if _, err := NewTokenIssuer("test-secret", -time.Minute).Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			t.Error("expected caller in context")
		}
		return c.JSON(http.StatusOK, caller)
	})
	return rec, handler(c)
}

func TestTokenMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, _ := issuer.Issue(testAddr, RoleAuditor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err := invoke(t, TokenMiddleware(issuer), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenMiddleware_MissingHeader(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	err := TokenMiddleware(issuer)(func(c echo.Context) error { return nil })(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("X-Account-Address", "0x5D4281e40bEf3E5944144C87095a6E7C8bBD28E6")
	req.Header.Set("X-Account-Role", "auditor")

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	err := DevAuthMiddleware()(func(c echo.Context) error {
		caller, _ := CallerFromContext(c)
		if caller.Address != testAddr {
			t.Errorf("expected normalized address, got %s", caller.Address)
		}
		if caller.Role != RoleAuditor {
			t.Errorf("expected auditor, got %s", caller.Role)
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDevAuthMiddleware_BadAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("X-Account-Address", "nope")

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	err := DevAuthMiddleware()(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	SetCaller(c, Caller{Address: testAddr, Role: RoleAuditor})
	err := RequireRole(RoleAuditor)(func(c echo.Context) error { return nil })(c)
	if err != nil {
		t.Errorf("expected auditor to pass, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	SetCaller(c, Caller{Address: testAddr, Role: RolePatient})
	err = RequireRole(RoleAuditor)(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err = RequireRole(RoleAuditor)(func(c echo.Context) error { return nil })(c)
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing caller, got %v", err)
	}
}
