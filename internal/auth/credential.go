package auth

import "strings"

// Credential is either an APIKey or a BearerToken. A nil Credential means the
// request carried neither.
type Credential interface {
	isCredential()
}

// APIKey is an opaque key looked up by exact match.
type APIKey string

// BearerToken is a signed access token.
type BearerToken string

func (APIKey) isCredential()      {}
func (BearerToken) isCredential() {}

// SelectCredential applies the precedence rule: an API key always wins over a
// bearer token, and the token is only considered when no key is present.
// Blank values count as absent.
func SelectCredential(apiKey, bearerToken string) Credential {
	if key := strings.TrimSpace(apiKey); key != "" {
		return APIKey(key)
	}
	if token := strings.TrimSpace(bearerToken); token != "" {
		return BearerToken(token)
	}
	return nil
}
