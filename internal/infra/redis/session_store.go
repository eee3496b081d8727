package redis

import (
	"context"
	"encoding/json"
	"time"

	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
)

const sessionKey = "storefront:session"

type sessionSnapshot struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// SessionStore persists the current-session snapshot (token plus resolved
// profile) in Redis. It backs startup session recovery and is refreshed
// whenever the current principal's points balance changes, so header state
// stays consistent without a full reload.
type SessionStore struct {
	cli RedisClient
	ttl time.Duration
}

func NewSessionStore(cli RedisClient, ttl time.Duration) *SessionStore {
	return &SessionStore{cli: cli, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, token string, u model.User) error {
	b, err := json.Marshal(sessionSnapshot{Token: token, User: u})
	if err != nil {
		return err
	}
	return s.cli.Set(ctx, sessionKey, string(b), s.ttl)
}

func (s *SessionStore) Load(ctx context.Context) (string, *model.User, error) {
	raw, err := s.cli.Get(ctx, sessionKey)
	if err != nil {
		if IsNil(err) {
			return "", nil, domain.ErrNotFound
		}
		return "", nil, err
	}
	var snap sessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return "", nil, err
	}
	return snap.Token, &snap.User, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.cli.Del(ctx, sessionKey)
}
