package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iptv-reseller-store/internal/domain"
)

// credential is an auth-service account record. It lives in its own table,
// separate from the users profile table, mirroring the split between the
// auth principal and the lazily provisioned domain profile.
type credential struct {
	PrincipalID  string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialStore persists sign-in credentials in Postgres.
type CredentialStore struct {
	pool *pgxpool.Pool
}

func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// CreateAccount hashes the password and inserts a credential record.
// Used by the seed tool; interactive sign-up goes through the Gateway.
func (s *CredentialStore) CreateAccount(ctx context.Context, name, email, password string) (string, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", err
	}
	c := credential{
		PrincipalID:  uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Create(ctx, c); err != nil {
		return "", err
	}
	return c.PrincipalID, nil
}

func (s *CredentialStore) Create(ctx context.Context, c credential) error {
	const q = `
INSERT INTO auth_credentials (principal_id, name, email, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := s.pool.Exec(ctx, q, c.PrincipalID, c.Name, c.Email, c.PasswordHash, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*credential, error) {
	const q = `
SELECT principal_id, name, email, password_hash, created_at
  FROM auth_credentials
 WHERE email = $1;
`
	var c credential
	err := s.pool.QueryRow(ctx, q, email).Scan(&c.PrincipalID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}
