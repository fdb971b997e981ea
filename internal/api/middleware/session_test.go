package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/userboard/registration-system/internal/core/domain"
)

type stubSessionService struct {
	currentFn func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubSessionService) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (s *stubSessionService) Logout(context.Context, string) error {
	return nil
}

func (s *stubSessionService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	return s.currentFn(ctx, token)
}

func (s *stubSessionService) AuthorizeEdit(ctx context.Context, token string, targetUserID uint) bool {
	user, err := s.currentFn(ctx, token)
	return err == nil && user.ID == targetUserID
}

func TestLoadSession_ValidCookie(t *testing.T) {
	e := echo.New()
	alice := &domain.User{ID: 1, Username: "alice"}
	stub := &stubSessionService{
		currentFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != "token123" {
				t.Fatalf("unexpected token: %q", token)
			}
			return alice, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "token123"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := LoadSession(stub)(func(c echo.Context) error {
		called = true
		if CurrentUser(c) != alice {
			t.Fatalf("current user not set")
		}
		if Token(c) != "token123" {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestLoadSession_DeadTokenPassesThroughAnonymous(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{
		currentFn: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrSessionNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "revoked"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := LoadSession(stub)(func(c echo.Context) error {
		if CurrentUser(c) != nil {
			t.Fatalf("expected anonymous request")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoadSession_NoCookie(t *testing.T) {
	e := echo.New()
	stub := &stubSessionService{
		currentFn: func(context.Context, string) (*domain.User, error) {
			t.Fatalf("session service should not be called without a cookie")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := LoadSession(stub)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/1/edit", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireUser()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login?next=%2Fuser%2F1%2Fedit" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
}

func TestRequireUser_AllowsAuthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/1/edit", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userKey, &domain.User{ID: 1})

	called := false
	handler := RequireUser()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}
