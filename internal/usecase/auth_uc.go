package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/adapter"
	"iptv-reseller-store/internal/domain/ports/repository"
	"iptv-reseller-store/internal/infra/logging"
	"iptv-reseller-store/internal/infra/metrics"
)

// AuthState is the authentication lifecycle state of the store.
type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateAuthenticating  AuthState = "authenticating"
	StateAuthenticated   AuthState = "authenticated"
)

// SessionSnapshots persists the resolved current-session snapshot.
type SessionSnapshots interface {
	Save(ctx context.Context, token string, u model.User) error
	// Load returns domain.ErrNotFound when no snapshot is persisted.
	Load(ctx context.Context) (string, *model.User, error)
	Clear(ctx context.Context) error
}

// CurrentSession is the read/refresh surface the catalog store needs to keep
// the persisted session snapshot consistent when the current principal's
// points balance changes.
type CurrentSession interface {
	Current() *model.User
	RefreshUser(ctx context.Context, u model.User)
}

// Compile-time check
var _ CurrentSession = (*AuthStore)(nil)

// AuthStore owns the authentication lifecycle and the current principal.
// It is an explicit session object with an Init/Close lifecycle: Init
// recovers any persisted session and subscribes to gateway session events
// (sign-ins and sign-outs from any source, including token expiry) for the
// remainder of the process lifetime.
type AuthStore struct {
	gw             adapter.AuthGateway
	users          repository.UserRepository
	snapshots      SessionSnapshots
	adminEmail     string
	minPasswordLen int
	log            *zerolog.Logger

	mu      sync.RWMutex
	state   AuthState
	current *model.User
	token   string

	done chan struct{}
	wg   sync.WaitGroup
}

func NewAuthStore(
	gw adapter.AuthGateway,
	users repository.UserRepository,
	snapshots SessionSnapshots,
	adminEmail string,
	minPasswordLen int,
	logger *zerolog.Logger,
) *AuthStore {
	if minPasswordLen <= 0 {
		minPasswordLen = 6
	}
	return &AuthStore{
		gw:             gw,
		users:          users,
		snapshots:      snapshots,
		adminEmail:     strings.ToLower(adminEmail),
		minPasswordLen: minPasswordLen,
		log:            logger,
		state:          StateUnauthenticated,
		done:           make(chan struct{}),
	}
}

// Init recovers an existing session, if any, and starts the event loop.
// A recovery or provisioning failure leaves the store Unauthenticated; it
// never fails startup.
func (s *AuthStore) Init(ctx context.Context) {
	s.setState(StateAuthenticating)

	// Snapshot first: the last resolved profile becomes visible immediately,
	// then the gateway verdict below confirms or clears it.
	if token, u, err := s.snapshots.Load(ctx); err == nil && u != nil {
		s.mu.Lock()
		s.state = StateAuthenticated
		s.current = u
		s.token = token
		s.mu.Unlock()
	}

	sess, err := s.gw.Session(ctx)
	switch {
	case err == nil:
		if err := s.handleSession(ctx, sess); err != nil {
			s.log.Error().Err(err).Msg("session recovery: profile resolution failed")
			s.clearLocal(ctx)
		}
	case errors.Is(err, domain.ErrNotFound):
		s.clearLocal(ctx)
	default:
		s.log.Warn().Err(err).Msg("session recovery failed")
		s.clearLocal(ctx)
	}

	s.wg.Add(1)
	go s.eventLoop()
}

// Close stops the event loop. The gateway is closed by its owner.
func (s *AuthStore) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns a copy of the authenticated profile, or nil.
func (s *AuthStore) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Login authenticates with the backend. Failures never escape as errors:
// they are logged and reported as false, with no partial state mutation —
// an already-authenticated session survives a failed attempt untouched.
func (s *AuthStore) Login(ctx context.Context, email, password string) bool {
	defer logging.TraceDuration(s.log, "AuthStore.Login")()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.IncLogin(false)
		return false
	}

	s.mu.Lock()
	prevState, prevCurrent, prevToken := s.state, s.current, s.token
	s.state = StateAuthenticating
	s.mu.Unlock()

	restore := func() {
		if prevCurrent == nil {
			s.clearLocal(ctx)
			return
		}
		s.mu.Lock()
		s.state = prevState
		s.current = prevCurrent
		s.token = prevToken
		s.mu.Unlock()
	}

	sess, err := s.gw.SignIn(ctx, email, password)
	if err != nil {
		s.log.Info().Str("email", logging.Redact(email, false)).Err(err).Msg("login failed")
		restore()
		metrics.IncLogin(false)
		return false
	}
	if err := s.handleSession(ctx, sess); err != nil {
		s.log.Error().Err(err).Msg("login: profile resolution failed")
		restore()
		metrics.IncLogin(false)
		return false
	}
	metrics.IncLogin(true)
	return true
}

// Register creates a new backend principal with an implicit client role.
// Validation happens locally first; with a short password no remote call is
// made. The profile row is provisioned by the event loop on the subsequent
// signed_in event, so callers must not assume it exists when this returns.
func (s *AuthStore) Register(ctx context.Context, name, email, password string) bool {
	defer logging.TraceDuration(s.log, "AuthStore.Register")()

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") || len(password) < s.minPasswordLen {
		metrics.IncRegistration(false)
		return false
	}

	if _, err := s.gw.SignUp(ctx, name, email, password); err != nil {
		s.log.Info().Str("email", logging.Redact(email, false)).Err(err).Msg("registration failed")
		metrics.IncRegistration(false)
		return false
	}
	metrics.IncRegistration(true)
	return true
}

// Logout invalidates the backend session and clears local state
// unconditionally, even when the remote call fails.
func (s *AuthStore) Logout(ctx context.Context) {
	if err := s.gw.SignOut(ctx); err != nil {
		s.log.Warn().Err(err).Msg("remote sign-out failed; clearing local state anyway")
	}
	s.clearLocal(ctx)
}

// RefreshUser replaces the current profile and re-persists the snapshot.
// No-op unless u is the current principal.
func (s *AuthStore) RefreshUser(ctx context.Context, u model.User) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != u.ID {
		s.mu.Unlock()
		return
	}
	cp := u
	s.current = &cp
	token := s.token
	s.mu.Unlock()

	if err := s.snapshots.Save(ctx, token, u); err != nil {
		s.log.Warn().Err(err).Msg("session snapshot refresh failed")
	}
}

func (s *AuthStore) eventLoop() {
	defer s.wg.Done()
	events := s.gw.Events()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			switch ev.Kind {
			case adapter.SessionSignedIn:
				if ev.Session != nil {
					if err := s.handleSession(ctx, ev.Session); err != nil {
						s.log.Error().Err(err).Msg("session event: profile resolution failed")
						s.clearLocal(ctx)
					}
				}
			case adapter.SessionSignedOut:
				s.clearLocal(ctx)
			}
			cancel()
		}
	}
}

// handleSession resolves the principal to a domain profile, creating it
// lazily on first sight. The reserved admin email yields the admin role;
// every other principal becomes a client.
func (s *AuthStore) handleSession(ctx context.Context, sess *adapter.Session) error {
	s.mu.RLock()
	already := s.state == StateAuthenticated && s.current != nil && s.current.ID == sess.Principal.ID
	s.mu.RUnlock()
	if already {
		return nil
	}

	u, err := s.users.FindByID(ctx, repository.NoTX, sess.Principal.ID)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.provisionProfile(ctx, sess.Principal)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	cp := *u
	s.current = &cp
	s.token = sess.Token
	s.mu.Unlock()

	if err := s.snapshots.Save(ctx, sess.Token, *u); err != nil {
		s.log.Warn().Err(err).Msg("session snapshot save failed")
	}
	return nil
}

func (s *AuthStore) provisionProfile(ctx context.Context, p adapter.Principal) (*model.User, error) {
	role := model.RoleClient
	if normalizeEmail(p.Email) == s.adminEmail {
		role = model.RoleAdmin
	}
	name := p.Name
	if name == "" {
		if i := strings.IndexByte(p.Email, '@'); i > 0 {
			name = p.Email[:i]
		} else {
			name = "User"
		}
	}
	u, err := model.NewUser(p.ID, name, p.Email, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, repository.NoTX, u); err != nil {
		return nil, err
	}
	metrics.IncProfileProvisioned()
	s.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("profile provisioned")
	return u, nil
}

func (s *AuthStore) setState(st AuthState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *AuthStore) clearLocal(ctx context.Context) {
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.current = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.snapshots.Clear(ctx); err != nil {
		s.log.Debug().Err(err).Msg("session snapshot clear failed")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
