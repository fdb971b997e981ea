package ports

import (
	"context"

	"github.com/userboard/registration-system/internal/core/domain"
)

// RegisterInput carries the already shape-validated registration fields.
// Normalization (trimming, email lowercasing) is the service's job.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Bio      string
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	FullName string
	Email    string
	Bio      string
}

type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	SetPassword(ctx context.Context, user *domain.User, rawPassword string) error
	CheckPassword(user *domain.User, rawPassword string) bool
	UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	ListRecent(ctx context.Context, limit int) ([]domain.User, error)
}
