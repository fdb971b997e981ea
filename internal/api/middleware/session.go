package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/userboard/registration-system/internal/core/domain"
	"github.com/userboard/registration-system/internal/core/ports"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "ub_session"

const (
	userKey  = "current_user"
	tokenKey = "session_token"
)

// LoadSession resolves the session cookie, if present, and injects the
// current user into the request context. Anonymous requests pass through
// untouched, as do requests carrying a dead or tampered token.
func LoadSession(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err == nil && cookie.Value != "" {
				if user, err := sessions.CurrentUser(c.Request().Context(), cookie.Value); err == nil {
					c.Set(userKey, user)
					c.Set(tokenKey, cookie.Value)
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests by redirecting to the login page
// with the original path carried in ?next=. It assumes LoadSession ran.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				target := "/login?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusSeeOther, target)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user for this request, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

// Token returns the raw session token for this request, or "".
func Token(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
