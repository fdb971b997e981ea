package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userboard/registration-system/internal/core/domain"
	"github.com/userboard/registration-system/internal/core/ports"
)

// IdentityService implements account creation, credential checks and profile
// updates on top of a UserRepository.
type IdentityService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewIdentityService(repo ports.UserRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{repo: repo, logger: logger}
}

// Register creates a new account. The username is trimmed, the email trimmed
// and lowercased. A single combined lookup rejects an existing username or
// email with ErrDuplicateUser before any write; the repository's unique
// constraints remain the authoritative guard under concurrent registration.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.repo.FindConflict(ctx, username, email); err == nil {
		return nil, domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("duplicate pre-check: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Bio:          strings.TrimSpace(in.Bio),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// SetPassword replaces the stored hash with a fresh bcrypt hash of
// rawPassword. The raw value is never persisted or logged.
func (s *IdentityService) SetPassword(ctx context.Context, user *domain.User, rawPassword string) error {
	if rawPassword == "" {
		return domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()

	if _, err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password changed")
	return nil
}

// CheckPassword reports whether rawPassword matches the stored hash. A user
// with no hash set can never authenticate. bcrypt's comparison is
// constant-structure, so timing reveals nothing about the stored hash.
func (s *IdentityService) CheckPassword(user *domain.User, rawPassword string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(rawPassword)) == nil
}

// UpdateProfile applies the editable fields to the given account. A proposed
// email already owned by a different user fails with ErrDuplicateUser and
// leaves the record untouched.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID uint, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	if email != user.Email {
		if _, err := s.repo.FindByEmailExcept(ctx, email, user.ID); err == nil {
			return nil, domain.ErrDuplicateUser
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("email conflict check: %w", err)
		}
	}

	user.Email = email
	user.FullName = strings.TrimSpace(in.FullName)
	user.Bio = strings.TrimSpace(in.Bio)
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}

// FindByIdentifier resolves a login identifier. The username match is exact;
// the email match is case-insensitive because stored emails are lowercase and
// the repository lowercases the identifier on that side of the lookup.
func (s *IdentityService) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByIdentifier(ctx, identifier)
}

func (s *IdentityService) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *IdentityService) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.repo.ListRecent(ctx, limit)
}
