package auth

import (
	"context"
	"errors"
	"fmt"

	"qrcode-api/internal/domain"
)

// Resolver turns the credential of one request into a user. It holds no
// per-request state and never caches users.
type Resolver struct {
	apiKeys Verifier
	tokens  Verifier
}

func NewResolver(apiKeys, tokens Verifier) *Resolver {
	return &Resolver{apiKeys: apiKeys, tokens: tokens}
}

// Resolve returns the user behind cred or an *Error describing why not.
// Store failures are returned wrapped and are not *Error values.
func (r *Resolver) Resolve(ctx context.Context, cred Credential) (*domain.User, error) {
	switch c := cred.(type) {
	case nil:
		return nil, ErrUnauthenticated
	case APIKey:
		user, err := r.apiKeys.Verify(ctx, string(c))
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, ErrIdentityMissing), errors.Is(err, ErrCredentialRejected):
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("resolve api key: %w", err)
		}
	case BearerToken:
		user, err := r.tokens.Verify(ctx, string(c))
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, ErrCredentialRejected):
			return nil, ErrInvalidToken
		case errors.Is(err, ErrIdentityMissing):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("resolve bearer token: %w", err)
		}
	default:
		return nil, ErrUnauthenticated
	}
}
