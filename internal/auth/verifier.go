package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/repository"
)

// ErrIdentityMissing is returned by a verifier when the credential is
// structurally valid but names no existing user.
var ErrIdentityMissing = errors.New("identity missing")

// UserLookup is the slice of the user store the verifiers need.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
}

// Verifier resolves one kind of raw credential to a user.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*domain.User, error)
}

// APIKeyVerifier matches keys exactly against the stored current key.
type APIKeyVerifier struct {
	users UserLookup
}

func NewAPIKeyVerifier(users UserLookup) *APIKeyVerifier {
	return &APIKeyVerifier{users: users}
}

func (v *APIKeyVerifier) Verify(ctx context.Context, raw string) (*domain.User, error) {
	user, err := v.users.GetByAPIKey(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityMissing
		}
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	return user, nil
}

// TokenVerifier validates signed access tokens and loads their subject.
type TokenVerifier struct {
	tokens *Tokens
	users  UserLookup
}

func NewTokenVerifier(tokens *Tokens, users UserLookup) *TokenVerifier {
	return &TokenVerifier{tokens: tokens, users: users}
}

func (v *TokenVerifier) Verify(ctx context.Context, raw string) (*domain.User, error) {
	payload, err := v.tokens.Parse(raw)
	if err != nil {
		return nil, ErrCredentialRejected
	}
	id, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrCredentialRejected
	}

	user, err := v.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityMissing
		}
		return nil, fmt.Errorf("lookup token subject: %w", err)
	}
	return user, nil
}

var (
	_ Verifier = (*APIKeyVerifier)(nil)
	_ Verifier = (*TokenVerifier)(nil)
)
