package auth

// Keys used by every SessionCache adapter.
const (
	CacheKeyToken   = "token"
	CacheKeyRawRole = "rawRole"
	CacheKeyRole    = "role"
	CacheKeyUserID  = "userId"

	// CompletionVerifiedValue is the only value that marks a user as verified complete.
	CompletionVerifiedValue = "true"

	completionKeyPrefix = "profileComplete_"
)

// CredentialKeys lists the keys written and removed as one unit.
var CredentialKeys = []string{CacheKeyToken, CacheKeyRawRole, CacheKeyRole, CacheKeyUserID}

// CompletionCacheKey returns the per-user completeness key.
func CompletionCacheKey(userID string) string {
	return completionKeyPrefix + userID
}

// CredentialsToValues flattens credentials into cache key/value pairs.
func CredentialsToValues(c Credentials) map[string]string {
	return map[string]string{
		CacheKeyToken:   c.Token,
		CacheKeyRawRole: string(c.RawRole),
		CacheKeyRole:    string(c.Role),
		CacheKeyUserID:  c.UserID,
	}
}

// CredentialsFromValues rebuilds credentials from cache values. ok is false
// unless token, role and user id are all present.
func CredentialsFromValues(values map[string]string) (Credentials, bool) {
	c := Credentials{
		Token:   values[CacheKeyToken],
		RawRole: RawRole(values[CacheKeyRawRole]),
		Role:    Role(values[CacheKeyRole]),
		UserID:  values[CacheKeyUserID],
	}
	if !c.Valid() {
		return Credentials{}, false
	}
	return c, true
}
