// Package redis provides a Redis-backed session cache for devices that share
// a local Redis (kiosks, managed terminals).
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/profilegate/internal/domain/auth"
)

// SessionCache is a Redis-based implementation of ports.SessionCache.
// Credential keys are written with a single MSET and removed with a single
// DEL, so a reader never observes half a session.
type SessionCache struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionCache creates a session cache using the default key prefix.
func NewSessionCache(client redis.UniversalClient) *SessionCache {
	return NewSessionCacheWithPrefix(client, "profilegate:")
}

// NewSessionCacheWithPrefix creates a session cache with a custom key prefix.
func NewSessionCacheWithPrefix(client redis.UniversalClient, prefix string) *SessionCache {
	return &SessionCache{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionCache) key(k string) string { return s.prefix + k }

func (s *SessionCache) LoadCredentials(ctx context.Context) (domainauth.Credentials, bool, error) {
	keys := make([]string, len(domainauth.CredentialKeys))
	for i, k := range domainauth.CredentialKeys {
		keys[i] = s.key(k)
	}

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return domainauth.Credentials{}, false, fmt.Errorf("redis mget: %w", err)
	}

	values := make(map[string]string, len(raw))
	for i, v := range raw {
		if str, ok := v.(string); ok {
			values[domainauth.CredentialKeys[i]] = str
		}
	}
	creds, ok := domainauth.CredentialsFromValues(values)
	return creds, ok, nil
}

func (s *SessionCache) SaveCredentials(ctx context.Context, creds domainauth.Credentials) error {
	if !creds.Valid() {
		return errors.New("credentials require token, role and user id")
	}

	pairs := make([]any, 0, 2*len(domainauth.CredentialKeys))
	for k, v := range domainauth.CredentialsToValues(creds) {
		pairs = append(pairs, s.key(k), v)
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	return nil
}

func (s *SessionCache) CompletionVerified(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	value, err := s.client.Get(ctx, s.key(domainauth.CompletionCacheKey(userID))).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	return value == domainauth.CompletionVerifiedValue, nil
}

func (s *SessionCache) MarkCompletionVerified(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	key := s.key(domainauth.CompletionCacheKey(userID))
	if err := s.client.Set(ctx, key, domainauth.CompletionVerifiedValue, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionCache) ForgetCompletion(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(domainauth.CompletionCacheKey(userID))).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *SessionCache) Clear(ctx context.Context, userID string) error {
	keys := make([]string, 0, len(domainauth.CredentialKeys)+1)
	for _, k := range domainauth.CredentialKeys {
		keys = append(keys, s.key(k))
	}
	if userID != "" {
		keys = append(keys, s.key(domainauth.CompletionCacheKey(userID)))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
