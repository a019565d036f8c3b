// Package gate derives the top-level application mode from a session.
package gate

import (
	"github.com/target/profilegate/internal/domain/auth"
)

// Kind is one of the mutually exclusive top-level modes.
type Kind string

const (
	KindLoggedOut         Kind = "logged_out"
	KindProfileIncomplete Kind = "profile_incomplete"
	KindDashboard         Kind = "dashboard"
)

// Mode is the current top-level mode. Role is empty for KindLoggedOut.
type Mode struct {
	Kind Kind
	Role auth.Role
}

// LoggedOut is the mode of the zero session.
var LoggedOut = Mode{Kind: KindLoggedOut}

// ProfileIncomplete returns the completion mode for role.
func ProfileIncomplete(role auth.Role) Mode {
	return Mode{Kind: KindProfileIncomplete, Role: role}
}

// Dashboard returns the dashboard mode for role.
func Dashboard(role auth.Role) Mode {
	return Mode{Kind: KindDashboard, Role: role}
}

func (m Mode) String() string {
	if m.Role == "" {
		return string(m.Kind)
	}
	return string(m.Kind) + ":" + string(m.Role)
}

// Derive maps a session onto exactly one mode. An unknown verdict gates the
// same as an incomplete one.
func Derive(s auth.Session) Mode {
	if !s.LoggedIn() {
		return LoggedOut
	}
	if !s.Role.RequiresProfile() {
		return Dashboard(s.Role)
	}
	if s.Completion != auth.CompletionComplete {
		return ProfileIncomplete(s.Role)
	}
	return Dashboard(s.Role)
}
