package adapter

import (
	"context"
	"time"
)

// Principal identifies an authenticated account at the auth boundary.
// It is not the domain profile; the auth store resolves (and lazily
// provisions) the profile row from it.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// Session is an established authentication session.
type Session struct {
	Token     string
	Principal Principal
	ExpiresAt time.Time
}

type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent is pushed on the Events stream whenever the session state
// changes from any source, including token expiry.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *Session // set for signed_in events
}

// AuthGateway is the port over the external authentication service:
// session recovery, password sign-in, sign-up, sign-out, and a
// session-change notification stream.
type AuthGateway interface {
	// Session recovers the persisted session, if any. Returns
	// domain.ErrNotFound when no session exists and domain.ErrSessionExpired
	// when a persisted session is no longer valid.
	Session(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp creates a new principal and establishes a session for it. The
	// caller must not assume a domain profile exists when SignUp returns;
	// provisioning happens on the subsequent signed_in event.
	SignUp(ctx context.Context, name, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// Events streams session changes for the life of the gateway.
	Events() <-chan SessionEvent
	Close() error
}
