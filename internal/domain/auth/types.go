// Package auth contains domain-level types for the client session.
// It is pure and free of framework/adapter concerns.
package auth

import "github.com/target/profilegate/internal/domain/profile"

// Role is a normalized application role. Gating decisions only ever look at
// these three values.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleRetailer Role = "retailer"
	RoleClient   Role = "client"
)

// RequiresProfile reports whether users with this role must complete a profile
// before they reach their dashboard.
func (r Role) RequiresProfile() bool {
	return r == RoleEmployee || r == RoleRetailer
}

// RawRole is the role string exactly as the remote service emitted it.
type RawRole string

// Completion is the tri-state completeness verdict held by a Session.
type Completion int

const (
	CompletionUnknown Completion = iota
	CompletionIncomplete
	CompletionComplete
)

func (c Completion) String() string {
	switch c {
	case CompletionComplete:
		return "true"
	case CompletionIncomplete:
		return "false"
	default:
		return "unknown"
	}
}

// CompletionFrom converts a policy verdict into a Completion.
func CompletionFrom(complete bool) Completion {
	if complete {
		return CompletionComplete
	}
	return CompletionIncomplete
}

// Credentials is the unit persisted to the local session cache. The four
// fields are always written and removed together.
type Credentials struct {
	Token   string  `json:"token"`
	RawRole RawRole `json:"raw_role"`
	Role    Role    `json:"role"`
	UserID  string  `json:"user_id"`
}

// Valid reports whether the credentials carry everything needed to restore a session.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.Role != "" && c.UserID != ""
}

// Session describes the current actor. The zero value is the logged-out session.
// Token, UserID and Role are either all set or all empty.
type Session struct {
	Token      string
	RawRole    RawRole
	Role       Role
	UserID     string
	Profile    *profile.Record
	Completion Completion
}

// LoggedIn reports whether the session carries a bearer token.
func (s Session) LoggedIn() bool { return s.Token != "" }

// Credentials returns the persisted projection of the session.
func (s Session) Credentials() Credentials {
	return Credentials{Token: s.Token, RawRole: s.RawRole, Role: s.Role, UserID: s.UserID}
}

// NewSession restores a session from persisted credentials with an unknown verdict.
func NewSession(c Credentials) Session {
	return Session{
		Token:      c.Token,
		RawRole:    c.RawRole,
		Role:       c.Role,
		UserID:     c.UserID,
		Completion: CompletionUnknown,
	}
}
