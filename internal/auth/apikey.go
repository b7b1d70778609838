package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const apiKeyEntropyBytes = 32

// NewAPIKey returns the hex SHA-256 digest of 256 random bits. The digest is
// both the stored and the exposed key.
func NewAPIKey() (string, error) {
	seed := make([]byte, apiKeyEntropyBytes)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:]), nil
}
