package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/repository"
)

// fakeUsers is an in-memory UserLookup.
type fakeUsers struct {
	byID  map[int64]*domain.User
	err   error
	calls []string
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*domain.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.calls = append(f.calls, fmt.Sprintf("id:%d", id))
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) GetByAPIKey(_ context.Context, key string) (*domain.User, error) {
	f.calls = append(f.calls, "key:"+key)
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.APIKey != "" && u.APIKey == key {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func mustTokens(t *testing.T, secret, alg string) *Tokens {
	t.Helper()
	tokens, err := NewTokens(secret, alg, time.Hour)
	require.NoError(t, err)
	return tokens
}

func newTestResolver(t *testing.T, users *fakeUsers, tokens *Tokens) *Resolver {
	t.Helper()
	return NewResolver(NewAPIKeyVerifier(users), NewTokenVerifier(tokens, users))
}

func TestSelectCredential(t *testing.T) {
	assert.Nil(t, SelectCredential("", ""))
	assert.Nil(t, SelectCredential("  ", "\t"))
	assert.Equal(t, APIKey("k"), SelectCredential("k", ""))
	assert.Equal(t, BearerToken("t"), SelectCredential("", "t"))
	assert.Equal(t, APIKey("k"), SelectCredential("k", "t"))
}

func TestNewTokensValidation(t *testing.T) {
	_, err := NewTokens("", "HS256", time.Hour)
	require.Error(t, err)
	_, err = NewTokens("s", "RS256", time.Hour)
	require.Error(t, err)
	_, err = NewTokens("s", "HS256", 0)
	require.Error(t, err)
	_, err = NewTokens("s", "hs512", time.Minute)
	require.NoError(t, err)
	assert.True(t, SupportedAlgorithm("HS384"))
	assert.False(t, SupportedAlgorithm("none"))
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := mustTokens(t, "secret", "HS256")

	raw, err := tokens.Issue(42, 15*time.Minute)
	require.NoError(t, err)

	payload, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", payload.Subject)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), payload.ExpiresAt, 2*time.Second)
}

func TestTokenIssueIsDeterministic(t *testing.T) {
	tokens := mustTokens(t, "secret", "HS384")
	fixed := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return fixed }

	a, err := tokens.Issue(7, time.Hour)
	require.NoError(t, err)
	b, err := tokens.Issue(7, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTokenDefaultTTL(t *testing.T) {
	tokens := mustTokens(t, "secret", "HS256")
	raw, err := tokens.Issue(1, 0)
	require.NoError(t, err)
	payload, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), payload.ExpiresAt, 2*time.Second)
}

func TestTokenExpiredIsRejected(t *testing.T) {
	tokens := mustTokens(t, "secret", "HS256")
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := tokens.Issue(1, time.Hour)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(raw)
	require.ErrorIs(t, err, ErrCredentialRejected)
}

func TestTokenWrongSecretIsRejected(t *testing.T) {
	raw, err := mustTokens(t, "right", "HS256").Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = mustTokens(t, "wrong", "HS256").Parse(raw)
	require.ErrorIs(t, err, ErrCredentialRejected)
}

func TestTokenWrongAlgorithmIsRejected(t *testing.T) {
	raw, err := mustTokens(t, "same", "HS512").Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = mustTokens(t, "same", "HS256").Parse(raw)
	require.ErrorIs(t, err, ErrCredentialRejected)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = mustTokens(t, "secret", "HS256").Parse(raw)
	require.ErrorIs(t, err, ErrCredentialRejected)
}

func TestTokenMalformedIsRejected(t *testing.T) {
	tokens := mustTokens(t, "secret", "HS256")
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := tokens.Parse(raw)
		require.ErrorIs(t, err, ErrCredentialRejected, raw)
	}
}

func TestNewAPIKey(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		key, err := NewAPIKey()
		require.NoError(t, err)
		assert.Len(t, key, 64)
		assert.Equal(t, strings.ToLower(key), key)
		_, dup := seen[key]
		assert.False(t, dup)
		seen[key] = struct{}{}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}

func TestResolveWithoutCredential(t *testing.T) {
	r := newTestResolver(t, newFakeUsers(), mustTokens(t, "s", "HS256"))
	_, err := r.Resolve(context.Background(), nil)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = r.Resolve(context.Background(), SelectCredential("", ""))
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveAPIKeyTakesPrecedence(t *testing.T) {
	user := &domain.User{ID: 1, IsActive: true, APIKey: "good-key"}
	users := newFakeUsers(user)
	r := newTestResolver(t, users, mustTokens(t, "s", "HS256"))

	got, err := r.Resolve(context.Background(), SelectCredential("good-key", "garbage.token.value"))
	require.NoError(t, err)
	assert.Same(t, user, got)
	assert.Equal(t, []string{"key:good-key"}, users.calls)
}

func TestResolveInvalidAPIKeyDoesNotFallBackToToken(t *testing.T) {
	user := &domain.User{ID: 1, IsActive: true}
	tokens := mustTokens(t, "s", "HS256")
	token, err := tokens.Issue(user.ID, time.Hour)
	require.NoError(t, err)

	r := newTestResolver(t, newFakeUsers(user), tokens)
	_, err = r.Resolve(context.Background(), SelectCredential("unknown", token))
	require.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestResolveBearerToken(t *testing.T) {
	user := &domain.User{ID: 9, IsActive: true}
	tokens := mustTokens(t, "s", "HS256")
	token, err := tokens.Issue(user.ID, time.Hour)
	require.NoError(t, err)

	got, err := newTestResolver(t, newFakeUsers(user), tokens).Resolve(context.Background(), BearerToken(token))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
}

func TestResolveRejectedToken(t *testing.T) {
	r := newTestResolver(t, newFakeUsers(), mustTokens(t, "s", "HS256"))
	_, err := r.Resolve(context.Background(), BearerToken("nope"))
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "Could not validate credentials", err.Error())
}

func TestResolveTokenForDeletedUser(t *testing.T) {
	tokens := mustTokens(t, "s", "HS256")
	token, err := tokens.Issue(404, time.Hour)
	require.NoError(t, err)

	_, err = newTestResolver(t, newFakeUsers(), tokens).Resolve(context.Background(), BearerToken(token))
	require.ErrorIs(t, err, ErrUserNotFound)

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, KindNotFound, authErr.Kind)
}

func TestResolveNonNumericSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = newTestResolver(t, newFakeUsers(), mustTokens(t, "s", "HS256")).Resolve(context.Background(), BearerToken(raw))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveStoreFailureIsInternal(t *testing.T) {
	boom := errors.New("database is locked")
	users := newFakeUsers()
	users.err = boom

	_, err := newTestResolver(t, users, mustTokens(t, "s", "HS256")).Resolve(context.Background(), APIKey("k"))
	require.ErrorIs(t, err, boom)

	var authErr *Error
	assert.False(t, errors.As(err, &authErr))
}

func TestResolveAfterKeyRotation(t *testing.T) {
	user := &domain.User{ID: 3, IsActive: true, APIKey: "old"}
	r := newTestResolver(t, newFakeUsers(user), mustTokens(t, "s", "HS256"))

	_, err := r.Resolve(context.Background(), APIKey("old"))
	require.NoError(t, err)

	user.APIKey = "new"
	_, err = r.Resolve(context.Background(), APIKey("old"))
	require.ErrorIs(t, err, ErrInvalidAPIKey)
	_, err = r.Resolve(context.Background(), APIKey("new"))
	require.NoError(t, err)
}

func TestActiveGuard(t *testing.T) {
	assert.NoError(t, Active(&domain.User{IsActive: true}))
	assert.ErrorIs(t, Active(&domain.User{IsActive: false}), ErrInactiveUser)
	assert.ErrorIs(t, Active(&domain.User{IsActive: false, IsSuperuser: true}), ErrInactiveUser)
	assert.ErrorIs(t, Active(nil), ErrUnauthenticated)
}

func TestSuperuserGuard(t *testing.T) {
	assert.NoError(t, Superuser(&domain.User{IsActive: true, IsSuperuser: true}))
	assert.ErrorIs(t, Superuser(&domain.User{IsActive: true}), ErrNotSuperuser)
	assert.ErrorIs(t, Superuser(&domain.User{IsActive: false, IsSuperuser: true}), ErrInactiveUser)
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	var ran []string
	record := func(name string, err error) Guard {
		return func(*domain.User) error {
			ran = append(ran, name)
			return err
		}
	}
	err := Chain(record("a", nil), record("b", ErrNotSuperuser), record("c", nil))(&domain.User{})
	require.ErrorIs(t, err, ErrNotSuperuser)
	assert.Equal(t, []string{"a", "b"}, ran)
}
