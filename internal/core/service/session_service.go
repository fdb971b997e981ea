package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userboard/registration-system/internal/core/domain"
	"github.com/userboard/registration-system/internal/core/ports"
)

// SessionService owns the login-session lifecycle and the self-ownership
// authorization decision. A session lives as a record in the session store;
// the cookie token is an HS256-signed envelope naming that record, so the
// signature check is only the first gate and the stored record decides
// whether the login is still alive.
type SessionService struct {
	identity ports.IdentityService
	sessions ports.SessionRepository
	secret   []byte
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewSessionService(identity ports.IdentityService, sessions ports.SessionRepository, secret string, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		identity: identity,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// Login verifies the credentials and establishes a new session. An unknown
// identifier and a wrong password both return ErrInvalidCredentials so the
// response never reveals which field was wrong.
func (s *SessionService) Login(ctx context.Context, identifier, rawPassword string) (string, *domain.User, error) {
	user, err := s.identity.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("resolve identifier: %w", err)
	}

	if !s.identity.CheckPassword(user, rawPassword) {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.sign(session)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("session_id", session.ID).Msg("session established")
	return token, user, nil
}

// Logout deletes the session record behind the token. The token itself may
// remain signature-valid until its exp, but without the record it is dead.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info().Str("session_id", session.ID).Msg("session revoked")
	return nil
}

// CurrentUser resolves the token to its owning user. Absent, expired or
// revoked sessions all yield ErrSessionNotFound.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.identity.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// AuthorizeEdit is the sole authorization rule in the system: the caller may
// mutate exactly the account whose id matches their session's user id.
func (s *SessionService) AuthorizeEdit(ctx context.Context, token string, targetUserID uint) bool {
	user, err := s.CurrentUser(ctx, token)
	return err == nil && user.ID == targetUserID
}

func (s *SessionService) sign(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID,
		"sub": fmt.Sprintf("%d", session.UserID),
		"iat": session.IssuedAt.Unix(),
		"exp": session.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// resolve validates the token signature and expiry, then requires the session
// record to still exist in the store.
func (s *SessionService) resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrSessionNotFound
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.sessions.Find(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
