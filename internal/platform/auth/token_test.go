package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func handlerEchoingSubject(c echo.Context) error {
	return c.String(http.StatusOK, SubjectFromContext(c.Request().Context()))
}

func request(t *testing.T, secret, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", handlerEchoingSubject, Middleware(secret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	token, err := Sign("s3cret", "ops", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	rec := request(t, "s3cret", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ops" {
		t.Errorf("subject = %q, want ops", rec.Body.String())
	}
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	if rec := request(t, "s3cret", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_RejectsMalformedHeader(t *testing.T) {
	if rec := request(t, "s3cret", "Token abc"); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_RejectsWrongSecret(t *testing.T) {
	token, err := Sign("other", "ops", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if rec := request(t, "s3cret", "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_RejectsExpiredToken(t *testing.T) {
	token, err := Sign("s3cret", "ops", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if rec := request(t, "s3cret", "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_EmptySecretDisablesAuth(t *testing.T) {
	rec := request(t, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "" {
		t.Errorf("subject = %q, want empty", rec.Body.String())
	}
}
