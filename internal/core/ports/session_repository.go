package ports

import (
	"context"

	"github.com/userboard/registration-system/internal/core/domain"
)

// SessionRepository stores login sessions. Implementations are expected to
// expire records on their own once the session's ExpiresAt has passed.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	Find(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
