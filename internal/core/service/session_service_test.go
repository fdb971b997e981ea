package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/userboard/registration-system/internal/core/domain"
	"github.com/userboard/registration-system/internal/core/ports"
)

type stubSessionRepo struct {
	sessions map[string]*domain.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Save(_ context.Context, session *domain.Session) error {
	c := *session
	r.sessions[session.ID] = &c
	return nil
}

func (r *stubSessionRepo) Find(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func newSessionFixture(t *testing.T, ttl time.Duration) (*SessionService, *stubSessionRepo, *domain.User) {
	t.Helper()
	users := newStubUserRepo()
	identity := NewIdentityService(users, zerolog.Nop())
	sessions := newStubSessionRepo()
	svc := NewSessionService(identity, sessions, "test-secret", ttl, zerolog.Nop())

	user, err := identity.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, sessions, user
}

func TestSessionService_Login_ByUsernameAndEmail(t *testing.T) {
	svc, _, user := newSessionFixture(t, time.Hour)

	token, got, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login by username failed: %v", err)
	}
	if token == "" || got.ID != user.ID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, got)
	}

	token, got, err = svc.Login(context.Background(), "Alice@Example.com", "secret1")
	if err != nil {
		t.Fatalf("login by mixed-case email failed: %v", err)
	}
	if token == "" || got.ID != user.ID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, got)
	}
}

func TestSessionService_Login_GenericFailure(t *testing.T) {
	svc, _, _ := newSessionFixture(t, time.Hour)

	_, _, wrongPass := svc.Login(context.Background(), "alice", "wrong")
	_, _, unknownUser := svc.Login(context.Background(), "nobody", "secret1")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatalf("failure messages must be indistinguishable: %q vs %q", wrongPass, unknownUser)
	}
}

func TestSessionService_CurrentUser(t *testing.T) {
	svc, _, user := newSessionFixture(t, time.Hour)

	token, _, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	got, err := svc.CurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}
}

func TestSessionService_Logout_KillsToken(t *testing.T) {
	svc, _, _ := newSessionFixture(t, time.Hour)

	token, _, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.CurrentUser(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
	if err := svc.Logout(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected second logout to be rejected, got %v", err)
	}
}

func TestSessionService_RevokedRecordBeatsValidSignature(t *testing.T) {
	svc, sessions, _ := newSessionFixture(t, time.Hour)

	token, _, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Simulate server-side revocation with the signature still valid.
	for id := range sessions.sessions {
		delete(sessions.sessions, id)
	}

	if _, err := svc.CurrentUser(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for revoked session, got %v", err)
	}
}

func TestSessionService_ExpiredSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t, -time.Minute)

	token, _, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.CurrentUser(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}
}

func TestSessionService_GarbageToken(t *testing.T) {
	svc, _, _ := newSessionFixture(t, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.CurrentUser(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound for token %q, got %v", token, err)
		}
	}
}

func TestSessionService_AuthorizeEdit(t *testing.T) {
	users := newStubUserRepo()
	identity := NewIdentityService(users, zerolog.Nop())
	svc := NewSessionService(identity, newStubSessionRepo(), "test-secret", time.Hour, zerolog.Nop())

	alice, err := identity.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := identity.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "secret2",
	})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	token, _, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if !svc.AuthorizeEdit(context.Background(), token, alice.ID) {
		t.Fatalf("owner must be allowed to edit their own profile")
	}
	if svc.AuthorizeEdit(context.Background(), token, bob.ID) {
		t.Fatalf("editing another user's profile must be denied")
	}
	if svc.AuthorizeEdit(context.Background(), "", alice.ID) {
		t.Fatalf("anonymous caller must be denied")
	}
}
