package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Random byte counts for issued credentials.
const (
	AccessKeyBytes  = 32
	RefreshKeyBytes = 64
)

// Encoded lengths of issued credentials (unpadded URL-safe base64).
var (
	AccessKeyLen  = base64.RawURLEncoding.EncodedLen(AccessKeyBytes)
	RefreshKeyLen = base64.RawURLEncoding.EncodedLen(RefreshKeyBytes)
)

// GenerateToken returns n random bytes encoded as unpadded URL-safe base64.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
