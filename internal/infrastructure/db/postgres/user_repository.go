package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/userboard/registration-system/internal/core/domain"
)

// userRecord is the persisted shape of a user. The unique indexes on
// username and email are the authoritative duplicate guard: the service's
// pre-check only exists for a friendly form message, two racing inserts are
// decided here.
type userRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:80;uniqueIndex;not null"`
	Email        string    `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255"`
	FullName     string    `gorm:"size:120"`
	Bio          string    `gorm:"size:500"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string {
	return "users"
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := toRecord(user)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return fromRecord(&rec), nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := toRecord(user)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return fromRecord(&rec), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return fromRecord(&rec), nil
}

// FindByIdentifier matches the username exactly or the email after
// lowercasing the identifier; stored emails are always lowercase.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	return fromRecord(&rec), nil
}

func (r *UserRepository) FindConflict(ctx context.Context, username, email string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find conflicting user: %w", err)
	}
	return fromRecord(&rec), nil
}

func (r *UserRepository) FindByEmailExcept(ctx context.Context, email string, excludeID uint) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).
		Where("email = ? AND id <> ?", email, excludeID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return fromRecord(&rec), nil
}

func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	var recs []userRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}

	users := make([]domain.User, len(recs))
	for i := range recs {
		users[i] = *fromRecord(&recs[i])
	}
	return users, nil
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromRecord(rec *userRecord) *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FullName:     rec.FullName,
		Bio:          rec.Bio,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
