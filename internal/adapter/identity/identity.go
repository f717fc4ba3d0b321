// Package identity resolves bearer credentials to principal ids using
// argon2id hashes configured at startup.
package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// Argon2Params defines parameters for Argon2id credential hashing.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var defaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashCredential creates an argon2id hash of the credential, formatted
// argon2id$iterations$memory$parallelism$salt$hash with raw-std base64.
func HashCredential(credential string) (string, error) {
	params := defaultArgon2Params
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(credential), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
	encoded := fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// verifyCredential verifies a credential against its argon2id hash.
func verifyCredential(credential, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par64, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	var par uint8
	if par64 > math.MaxUint8 {
		par = math.MaxUint8
	} else {
		par = uint8(par64)
	}
	keyLen := defaultArgon2Params.KeyLen
	actualHash := argon2.IDKey([]byte(credential), salt, iters, mem, par, keyLen)
	return subtle.ConstantTimeCompare(actualHash, expectedHash) == 1
}

// Verifier implements domain.IdentityVerifier over a static principal table.
type Verifier struct {
	// hashes maps principal id to its encoded argon2id hash.
	hashes map[string]string
}

// NewVerifier parses "principal:hash" pairs into a Verifier. Malformed pairs
// are rejected at startup rather than silently skipped.
func NewVerifier(pairs []string) (*Verifier, error) {
	hashes := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		principal, hash, ok := strings.Cut(pair, ":")
		if !ok || principal == "" || hash == "" {
			return nil, fmt.Errorf("op=identity.NewVerifier: %w: malformed API key entry", domain.ErrInvalidArgument)
		}
		hashes[principal] = hash
	}
	return &Verifier{hashes: hashes}, nil
}

// Verify resolves a bearer credential of the form "principal.secret" to the
// principal id, or ErrUnauthorized.
func (v *Verifier) Verify(_ domain.Context, credential string) (string, error) {
	principal, secret, ok := strings.Cut(credential, ".")
	if !ok || principal == "" || secret == "" {
		return "", fmt.Errorf("op=identity.Verify: %w", domain.ErrUnauthorized)
	}
	hash, ok := v.hashes[principal]
	if !ok {
		return "", fmt.Errorf("op=identity.Verify: %w", domain.ErrUnauthorized)
	}
	if !verifyCredential(secret, hash) {
		return "", fmt.Errorf("op=identity.Verify: %w", domain.ErrUnauthorized)
	}
	return principal, nil
}

// parseUint32 parses a decimal string into uint32; returns error on failure.
func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse")
	}
	if x > math.MaxUint32 {
		return 0, fmt.Errorf("parse")
	}
	return uint32(x), nil
}
