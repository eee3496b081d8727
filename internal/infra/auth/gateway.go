package auth

import (
	"context"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/config"
	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/ports/adapter"
	red "iptv-reseller-store/internal/infra/redis"
)

const tokenKey = "storefront:auth_token"

var _ adapter.AuthGateway = (*Gateway)(nil)

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Gateway implements the auth boundary: password credentials in Postgres,
// HS256 session tokens, the current token persisted in Redis so a restart
// can recover the session, and a session-change event stream. A watcher
// goroutine emits signed_out when the token expires, so expiry propagates
// without user interaction.
type Gateway struct {
	creds  *CredentialStore
	cache  red.RedisClient
	secret []byte
	ttl    time.Duration
	log    *zerolog.Logger

	mu      sync.Mutex
	current *adapter.Session

	events chan adapter.SessionEvent
	done   chan struct{}
}

func NewGateway(creds *CredentialStore, cache red.RedisClient, cfg config.AuthConfig, logger *zerolog.Logger) *Gateway {
	g := &Gateway{
		creds:  creds,
		cache:  cache,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.SessionTTL,
		log:    logger,
		events: make(chan adapter.SessionEvent, 16),
		done:   make(chan struct{}),
	}
	go g.watchExpiry()
	return g
}

func (g *Gateway) Events() <-chan adapter.SessionEvent { return g.events }

func (g *Gateway) Close() error {
	close(g.done)
	return nil
}

func (g *Gateway) Session(ctx context.Context) (*adapter.Session, error) {
	g.mu.Lock()
	if s := g.current; s != nil {
		g.mu.Unlock()
		return s, nil
	}
	g.mu.Unlock()

	raw, err := g.cache.Get(ctx, tokenKey)
	if err != nil {
		if red.IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	sess, err := g.parseToken(raw)
	if err != nil {
		// Stale or tampered token: drop it so the next recovery is clean.
		_ = g.cache.Del(ctx, tokenKey)
		return nil, domain.ErrSessionExpired
	}

	g.mu.Lock()
	g.current = sess
	g.mu.Unlock()
	return sess, nil
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*adapter.Session, error) {
	cred, err := g.creds.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(password, cred.PasswordHash)
	if err != nil || !match {
		return nil, domain.ErrInvalidCredentials
	}
	return g.establish(ctx, adapter.Principal{ID: cred.PrincipalID, Email: cred.Email, Name: cred.Name})
}

func (g *Gateway) SignUp(ctx context.Context, name, email, password string) (*adapter.Session, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}
	cred := credential{
		PrincipalID:  uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.creds.Create(ctx, cred); err != nil {
		return nil, err
	}
	return g.establish(ctx, adapter.Principal{ID: cred.PrincipalID, Email: cred.Email, Name: cred.Name})
}

func (g *Gateway) SignOut(ctx context.Context) error {
	err := g.cache.Del(ctx, tokenKey)

	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()

	g.emit(adapter.SessionEvent{Kind: adapter.SessionSignedOut})
	return err
}

func (g *Gateway) establish(ctx context.Context, p adapter.Principal) (*adapter.Session, error) {
	now := time.Now()
	exp := now.Add(g.ttl)
	claims := sessionClaims{
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(ctx, tokenKey, signed, g.ttl); err != nil {
		return nil, err
	}

	sess := &adapter.Session{Token: signed, Principal: p, ExpiresAt: exp}
	g.mu.Lock()
	g.current = sess
	g.mu.Unlock()

	g.emit(adapter.SessionEvent{Kind: adapter.SessionSignedIn, Session: sess})
	return sess, nil
}

func (g *Gateway) parseToken(raw string) (*adapter.Session, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrSessionExpired
	}
	return &adapter.Session{
		Token:     raw,
		Principal: adapter.Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (g *Gateway) watchExpiry() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			g.mu.Lock()
			expired := g.current != nil && time.Now().After(g.current.ExpiresAt)
			if expired {
				g.current = nil
			}
			g.mu.Unlock()
			if expired {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				_ = g.cache.Del(ctx, tokenKey)
				cancel()
				g.log.Info().Msg("session token expired")
				g.emit(adapter.SessionEvent{Kind: adapter.SessionSignedOut})
			}
		}
	}
}

func (g *Gateway) emit(ev adapter.SessionEvent) {
	select {
	case g.events <- ev:
	default:
		g.log.Warn().Str("kind", string(ev.Kind)).Msg("session event dropped: slow consumer")
	}
}
