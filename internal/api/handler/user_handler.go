package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userboard/registration-system/internal/api/metrics"
	"github.com/userboard/registration-system/internal/api/middleware"
	"github.com/userboard/registration-system/internal/core/domain"
	"github.com/userboard/registration-system/internal/core/ports"
)

const recentUsersLimit = 10

// UserHandler serves the HTML pages: the recent-user listing, registration,
// login/logout and profile view/edit.
type UserHandler struct {
	identity   ports.IdentityService
	sessions   ports.SessionService
	sessionTTL time.Duration
}

func NewUserHandler(identity ports.IdentityService, sessions ports.SessionService, sessionTTL time.Duration) *UserHandler {
	return &UserHandler{identity: identity, sessions: sessions, sessionTTL: sessionTTL}
}

// Home renders the ten most recently registered users.
func (h *UserHandler) Home(c echo.Context) error {
	users, err := h.identity.ListRecent(c.Request().Context(), recentUsersLimit)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "home.html", h.page(c, echo.Map{"Users": users}))
}

// RegisterForm renders the empty registration form.
func (h *UserHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", h.page(c, echo.Map{"Form": registerForm{}}))
}

// Register processes a registration submission. Shape validation happens
// here; the duplicate check lives in the identity service.
func (h *UserHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}
	if err := c.Validate(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.Render(http.StatusOK, "register.html", h.page(c, echo.Map{
			"Form":   form,
			"Notice": &Flash{Category: "danger", Message: err.Error()},
		}))
	}

	_, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Bio:      form.Bio,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateUser):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return c.Render(http.StatusOK, "register.html", h.page(c, echo.Map{
			"Form":   form,
			"Notice": &Flash{Category: "warning", Message: "A user with that username or email already exists."},
		}))
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.Render(http.StatusOK, "register.html", h.page(c, echo.Map{
			"Form":   form,
			"Notice": &Flash{Category: "danger", Message: "All required fields must be filled in."},
		}))
	case err != nil:
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	setFlash(c, "success", "Registration successful. You can now log in.")
	return c.Redirect(http.StatusSeeOther, "/login")
}

// LoginForm renders the login form, carrying an optional ?next= target.
func (h *UserHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", h.page(c, echo.Map{
		"Form": loginForm{},
		"Next": safeNext(c.QueryParam("next")),
	}))
}

// Login authenticates by username or email. Failures are generic on purpose:
// the page never reveals whether the identifier or the password was wrong.
func (h *UserHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}
	if err := c.Validate(&form); err != nil {
		return c.Render(http.StatusOK, "login.html", h.page(c, echo.Map{
			"Form":   form,
			"Next":   safeNext(form.Next),
			"Notice": &Flash{Category: "danger", Message: err.Error()},
		}))
	}

	token, user, err := h.sessions.Login(c.Request().Context(), form.Identifier, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.Render(http.StatusOK, "login.html", h.page(c, echo.Map{
				"Form":   form,
				"Next":   safeNext(form.Next),
				"Notice": &Flash{Category: "danger", Message: "Invalid credentials."},
			}))
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	setFlash(c, "success", "Logged in successfully.")

	if next := safeNext(form.Next); next != "" {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/user/%d", user.ID))
}

// Logout revokes the current session and clears the cookie.
func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), middleware.Token(c)); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	metrics.LogoutsTotal.Inc()
	setFlash(c, "info", "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// Profile renders a user's public profile page.
func (h *UserHandler) Profile(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.identity.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	current := middleware.CurrentUser(c)
	return c.Render(http.StatusOK, "profile.html", h.page(c, echo.Map{
		"Profile": user,
		"CanEdit": current != nil && current.ID == user.ID,
	}))
}

// EditForm renders the edit form pre-filled with the current values.
// Requires an authenticated session; only the owner may proceed.
func (h *UserHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.identity.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if !h.sessions.AuthorizeEdit(c.Request().Context(), middleware.Token(c), user.ID) {
		metrics.ProfileUpdatesTotal.WithLabelValues("forbidden").Inc()
		setFlash(c, "danger", "You are not authorized to edit that profile.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/user/%d", user.ID))
	}

	return c.Render(http.StatusOK, "edit.html", h.page(c, echo.Map{
		"Profile": user,
		"Form": editProfileForm{
			FullName: user.FullName,
			Email:    user.Email,
			Bio:      user.Bio,
		},
	}))
}

// Edit applies a profile update for the owner.
func (h *UserHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.identity.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if !h.sessions.AuthorizeEdit(c.Request().Context(), middleware.Token(c), user.ID) {
		metrics.ProfileUpdatesTotal.WithLabelValues("forbidden").Inc()
		setFlash(c, "danger", "You are not authorized to edit that profile.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/user/%d", user.ID))
	}

	var form editProfileForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}
	if err := c.Validate(&form); err != nil {
		metrics.ProfileUpdatesTotal.WithLabelValues("invalid").Inc()
		return c.Render(http.StatusOK, "edit.html", h.page(c, echo.Map{
			"Profile": user,
			"Form":    form,
			"Notice":  &Flash{Category: "danger", Message: err.Error()},
		}))
	}

	_, err = h.identity.UpdateProfile(c.Request().Context(), user.ID, ports.UpdateProfileInput{
		FullName: form.FullName,
		Email:    form.Email,
		Bio:      form.Bio,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateUser):
		metrics.ProfileUpdatesTotal.WithLabelValues("conflict").Inc()
		return c.Render(http.StatusOK, "edit.html", h.page(c, echo.Map{
			"Profile": user,
			"Form":    form,
			"Notice":  &Flash{Category: "warning", Message: "Another user already uses that email address."},
		}))
	case err != nil:
		return err
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("updated").Inc()
	setFlash(c, "success", "Profile updated.")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/user/%d", user.ID))
}

// page assembles the common template data for a request.
func (h *UserHandler) page(c echo.Context, extra echo.Map) echo.Map {
	data := echo.Map{
		"CurrentUser": middleware.CurrentUser(c),
		"Flash":       popFlash(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// parseID reads the :id route parameter. A non-numeric id is a 404, same as
// an unknown one.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return uint(id), nil
}

// safeNext accepts only site-relative redirect targets. Backslashes are
// rejected outright: browsers normalize /\host to //host.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, `\`) {
		return next
	}
	return ""
}
