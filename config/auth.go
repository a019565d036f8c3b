package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents how the client signs in.
type AuthMode string

const (
	// AuthModeRemote signs in against the remote service.
	AuthModeRemote AuthMode = "remote"
	// AuthModeMock returns a configured identity without calling the service (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "remote", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: remote, mock)", v)
	}
}

// DevAuthConfig controls the mock sign-in identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID          string        `env:"USER_ID"          envDefault:"dev-user"`
	RawRole         string        `env:"ROLE"             envDefault:"employee"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all sign-in configuration.
type AuthConfig struct {
	// Mode determines which sign-in path is used.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"remote"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}
