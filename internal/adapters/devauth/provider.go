// Package devauth provides a simple, config-driven sign-in for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/ports"
)

// Config controls the dev sign-in identity.
// UserID and RawRole are required.
type Config struct {
	UserID          string
	RawRole         domainauth.RawRole
	SessionDuration time.Duration // default 8h when zero
	// Now defaults to time.Now.
	Now func() time.Time
}

// Provider wraps a ports.ProfileAPI and short-circuits SignIn with the
// configured identity. Every other call goes to the wrapped API unchanged.
//
// The token is an HS256 JWT signed with a per-process random key, so its
// exp claim is honored on rehydrate like a real one. It is not accepted by
// any real backend.
type Provider struct {
	ports.ProfileAPI

	userID   string
	rawRole  domainauth.RawRole
	duration time.Duration
	key      []byte
	now      func() time.Time
}

var _ ports.ProfileAPI = (*Provider)(nil)

// NewProvider constructs a dev sign-in provider in front of api.
func NewProvider(api ports.ProfileAPI, cfg Config) (*Provider, error) {
	if api == nil {
		return nil, errors.New("dev auth: profile api is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.RawRole == "" {
		return nil, errors.New("dev auth: RawRole is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = 8 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &Provider{
		ProfileAPI: api,
		userID:     cfg.UserID,
		rawRole:    cfg.RawRole,
		duration:   dur,
		key:        key,
		now:        now,
	}, nil
}

// SignIn ignores the supplied credentials and returns the dev identity.
func (p *Provider) SignIn(_ context.Context, _ ports.SignInInput) (ports.SignInResult, error) {
	jti, err := randomString(16)
	if err != nil {
		return ports.SignInResult{}, fmt.Errorf("generate token id: %w", err)
	}
	issued := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "profilegate-dev",
		Subject:   p.userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(p.duration)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return ports.SignInResult{}, fmt.Errorf("sign dev token: %w", err)
	}
	return ports.SignInResult{Token: token, RawRole: p.rawRole, UserID: p.userID}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
