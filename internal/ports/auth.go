// Package ports defines interfaces (hexagonal ports) for session and profile behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"encoding/json"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/profile"
)

// RoleNormalizer maps raw backend roles to application roles.
type RoleNormalizer interface {
	Normalize(raw domainauth.RawRole) (domainauth.Role, error)
}

// SessionCache is the durable local store that survives process restarts.
type SessionCache interface {
	// LoadCredentials returns the persisted credentials; ok is false unless
	// token, role and user id are all present.
	LoadCredentials(ctx context.Context) (creds domainauth.Credentials, ok bool, err error)

	// SaveCredentials persists token, raw role, role and user id as one unit.
	SaveCredentials(ctx context.Context, creds domainauth.Credentials) error

	// CompletionVerified reports whether the per-user completeness entry is "true".
	CompletionVerified(ctx context.Context, userID string) (bool, error)

	// MarkCompletionVerified writes the per-user completeness entry.
	MarkCompletionVerified(ctx context.Context, userID string) error

	// ForgetCompletion removes the per-user completeness entry. Removing an
	// absent entry is not an error.
	ForgetCompletion(ctx context.Context, userID string) error

	// Clear removes the credentials and the per-user completeness entry.
	Clear(ctx context.Context, userID string) error
}

// SignInInput carries the user's credentials for the remote sign-in endpoint.
type SignInInput struct {
	Phone    string
	Password string
}

// SignInResult is what the remote service returns on sign-in. Profile holds
// the role-shaped profile object when the service included one.
type SignInResult struct {
	Token   string
	RawRole domainauth.RawRole
	UserID  string
	Profile json.RawMessage
}

// Document describes a previously uploaded document or image.
type Document struct {
	Type        string
	URL         string
	Filename    string
	ContentType string
}

// ProfileAPI is the remote service as seen by the client. Every method but
// SignIn is bearer-authenticated with token.
type ProfileAPI interface {
	SignIn(ctx context.Context, in SignInInput) (SignInResult, error)

	// FetchProfile returns the role-shaped profile record.
	FetchProfile(ctx context.Context, token string, role domainauth.Role) (*profile.Record, error)

	// SubmitProfile sends an encoded multipart body and returns the echoed
	// record, or nil when the service echoed nothing usable.
	SubmitProfile(
		ctx context.Context,
		token string,
		role domainauth.Role,
		body []byte,
		contentType string,
	) (*profile.Record, error)

	// FetchDocument returns the named document; found is false when the
	// service answered 404.
	FetchDocument(
		ctx context.Context,
		token string,
		role domainauth.Role,
		docType string,
	) (doc Document, found bool, err error)

	// ConfirmBank asks the service whether the test disbursement was confirmed.
	ConfirmBank(ctx context.Context, token string, role domainauth.Role) (bool, error)
}
