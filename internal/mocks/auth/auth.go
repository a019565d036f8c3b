// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"maps"
	"sync"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionCache   = (*MemorySessionCache)(nil)
	_ ports.RoleNormalizer = StaticNormalizer{}
)

// MemorySessionCache is an in-memory session cache for unit tests. It stores
// values under the same keys the durable adapters use, so tests can inspect
// exactly what would have been persisted.
type MemorySessionCache struct {
	mu     sync.Mutex
	values map[string]string

	// Optional failure hooks; a non-nil error is returned instead of acting.
	LoadErr       error
	SaveErr       error
	CompletionErr error
	MarkErr       error
	ForgetErr     error
	ClearErr      error

	// Call counters
	Saves   int
	Marks   int
	Forgets int
	Clears  int
}

// NewMemorySessionCache creates an empty in-memory cache.
func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{values: make(map[string]string)}
}

func (m *MemorySessionCache) LoadCredentials(_ context.Context) (domainauth.Credentials, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return domainauth.Credentials{}, false, m.LoadErr
	}
	creds, ok := domainauth.CredentialsFromValues(m.values)
	return creds, ok, nil
}

func (m *MemorySessionCache) SaveCredentials(_ context.Context, creds domainauth.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if !creds.Valid() {
		return errors.New("incomplete credentials")
	}
	maps.Copy(m.values, domainauth.CredentialsToValues(creds))
	m.Saves++
	return nil
}

func (m *MemorySessionCache) CompletionVerified(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompletionErr != nil {
		return false, m.CompletionErr
	}
	return m.values[domainauth.CompletionCacheKey(userID)] == domainauth.CompletionVerifiedValue, nil
}

func (m *MemorySessionCache) MarkCompletionVerified(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	if userID == "" {
		return errors.New("user id cannot be empty")
	}
	m.values[domainauth.CompletionCacheKey(userID)] = domainauth.CompletionVerifiedValue
	m.Marks++
	return nil
}

func (m *MemorySessionCache) ForgetCompletion(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForgetErr != nil {
		return m.ForgetErr
	}
	delete(m.values, domainauth.CompletionCacheKey(userID))
	m.Forgets++
	return nil
}

func (m *MemorySessionCache) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	for _, k := range domainauth.CredentialKeys {
		delete(m.values, k)
	}
	if userID != "" {
		delete(m.values, domainauth.CompletionCacheKey(userID))
	}
	m.Clears++
	return nil
}

// Set writes a raw key, for seeding state a previous process left behind.
func (m *MemorySessionCache) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Get reads a raw key.
func (m *MemorySessionCache) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of stored keys.
func (m *MemorySessionCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// StaticNormalizer maps raw roles through a fixed table and fails on anything else.
type StaticNormalizer map[domainauth.RawRole]domainauth.Role

// ErrUnmapped is returned by StaticNormalizer for raw roles outside its table.
var ErrUnmapped = errors.New("unmapped raw role")

func (n StaticNormalizer) Normalize(raw domainauth.RawRole) (domainauth.Role, error) {
	if role, ok := n[raw]; ok {
		return role, nil
	}
	return "", ErrUnmapped
}
