package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// InviteCodeAlphabet omits glyphs that are easy to confuse when a code is
// read aloud or retyped (0/O, 1/I/L).
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the default length of generated invite codes.
const InviteCodeLength = 12

// GenerateToken creates a random base64url token of size bytes.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateInviteCode returns a random code of length characters drawn from
// InviteCodeAlphabet.
func GenerateInviteCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invite code length must be positive, got %d", length)
	}
	return randomString(InviteCodeAlphabet, length)
}

// NormalizeInviteCode upper-cases and trims a user supplied code so lookups
// are insensitive to how the invitee typed it.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Invite codes are logged by fingerprint so log readers cannot redeem them.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
