package ports

import (
	"context"

	"github.com/userboard/registration-system/internal/core/domain"
)

// UserRepository defines the persistence interface for user accounts.
//
// The backing store must enforce uniqueness of username and email itself;
// FindConflict exists only so the service can produce a friendly message
// before attempting the write.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	// FindByIdentifier matches username exactly or email case-insensitively.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// FindConflict returns any user holding the given username or email.
	FindConflict(ctx context.Context, username, email string) (*domain.User, error)
	// FindByEmailExcept returns a user with the given email whose id differs
	// from excludeID.
	FindByEmailExcept(ctx context.Context, email string, excludeID uint) (*domain.User, error)
	// ListRecent returns at most limit users, newest created_at first, ties
	// broken by ascending id.
	ListRecent(ctx context.Context, limit int) ([]domain.User, error)
}
