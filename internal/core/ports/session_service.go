package ports

import (
	"context"

	"github.com/userboard/registration-system/internal/core/domain"
)

type SessionService interface {
	// Login resolves the identifier, verifies the password and establishes a
	// new session, returning the signed cookie token. Unknown identifier and
	// wrong password are indistinguishable to the caller.
	Login(ctx context.Context, identifier, rawPassword string) (string, *domain.User, error)
	// Logout invalidates the session behind the token; the token is rejected
	// from then on even though its signature is still valid.
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	// AuthorizeEdit reports whether the token's user owns the target account.
	// Strict self-ownership, no admin override.
	AuthorizeEdit(ctx context.Context, token string, targetUserID uint) bool
}
