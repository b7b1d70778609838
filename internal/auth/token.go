package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrCredentialRejected is returned by verifiers for any structural,
// signature or expiry failure. Callers cannot tell those cases apart.
var ErrCredentialRejected = errors.New("credential rejected")

var supportedAlgorithms = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedAlgorithm reports whether alg can be used to sign access tokens.
func SupportedAlgorithm(alg string) bool {
	_, ok := supportedAlgorithms[strings.ToUpper(strings.TrimSpace(alg))]
	return ok
}

// TokenPayload is the decoded content of a valid access token.
type TokenPayload struct {
	Subject   string
	ExpiresAt time.Time
}

// Tokens issues and verifies HMAC-signed access tokens.
type Tokens struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	defaultTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret, algorithm string, defaultTTL time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	method, ok := supportedAlgorithms[strings.ToUpper(strings.TrimSpace(algorithm))]
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Issue signs {sub: userID, exp: now+ttl}. A non-positive ttl uses the default.
func (t *Tokens) Issue(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(t.now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse checks integrity and expiry of raw and decodes its payload.
func (t *Tokens) Parse(raw string) (TokenPayload, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return TokenPayload{}, ErrCredentialRejected
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return TokenPayload{}, ErrCredentialRejected
	}
	return TokenPayload{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
