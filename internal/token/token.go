package token

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
)

// Prefixes are the token namespaces, tried in order. Having several lets
// a compromised prefix be rolled over without touching the generation
// logic; they provide no collision resolution on their own.
var Prefixes = []string{
	"WBES", // Web Browser Extension Sync (primary)
	"TBKS", // TabKeep Sync (fallback 1)
	"USRS", // User Sync (fallback 2)
	"XSYN", // Cross Sync (fallback 3)
	"DEVS", // Device Sync (fallback 4)
}

const (
	// BodyLength is the number of random characters after the prefix.
	BodyLength = 50

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// CollisionChecker reports whether a token is already in use.
type CollisionChecker interface {
	TokenExists(ctx context.Context, token string) (bool, error)
}

// NopCollisionChecker never reports a collision. Token uniqueness is
// probabilistic only: 62^50 possible bodies per prefix.
type NopCollisionChecker struct{}

func (NopCollisionChecker) TokenExists(context.Context, string) (bool, error) {
	return false, nil
}

// Generate returns a sync token for the given prefix index.
// An out-of-range index falls back to the primary prefix.
// Example: WBESa3kD9fL2mN7pQ8rS1tV4wX6yZ0bC5eG8hJ3kL7mN2pQ4rS9tV1wX
func Generate(prefixIndex int) (string, error) {
	prefix := Prefixes[0]
	if prefixIndex >= 0 && prefixIndex < len(Prefixes) {
		prefix = Prefixes[prefixIndex]
	}

	body, err := randomString(BodyLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate token body: %w", err)
	}

	return prefix + body, nil
}

// GenerateUnique generates a token, consulting checker for collisions.
// On collision it advances to the next prefix, up to one attempt per
// prefix, then returns the last-generated token regardless.
func GenerateUnique(ctx context.Context, checker CollisionChecker) (string, error) {
	if checker == nil {
		checker = NopCollisionChecker{}
	}

	var tok string
	for i := 0; i < len(Prefixes); i++ {
		var err error
		tok, err = Generate(i)
		if err != nil {
			return "", err
		}

		exists, err := checker.TokenExists(ctx, tok)
		if err != nil {
			return "", fmt.Errorf("collision check failed: %w", err)
		}
		if !exists {
			return tok, nil
		}
	}

	// All prefixes collided. Return the last token anyway: the caller
	// gets best-effort uniqueness, same as always.
	return tok, nil
}

// Validate reports whether token is well-formed: a known prefix, the
// exact expected length, and an alphanumeric body.
func Validate(token string) bool {
	prefix := Prefix(token)
	if prefix == "" {
		return false
	}

	if len(token) != len(prefix)+BodyLength {
		return false
	}

	for _, c := range token[len(prefix):] {
		if !isAlphanumeric(c) {
			return false
		}
	}

	return true
}

// Prefix returns the known prefix token starts with, or "".
func Prefix(token string) string {
	for _, p := range Prefixes {
		if strings.HasPrefix(token, p) {
			return p
		}
	}
	return ""
}

// Parse splits a token into prefix and random body.
// ok is false when the token fails validation.
func Parse(token string) (prefix, body string, ok bool) {
	if !Validate(token) {
		return "", "", false
	}
	prefix = Prefix(token)
	return prefix, token[len(prefix):], true
}

func randomString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(length)
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String(), nil
}

func isAlphanumeric(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
