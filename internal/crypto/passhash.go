// Package crypto implements server-side secret hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// RandToken returns a random hex token of exactly n characters (n must be even).
func RandToken(n int) (string, error) {
	b, err := RandBytes(n / 2)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashSecret derives an Argon2id digest of secret with a fresh salt and returns
// it in PHC string format, e.g.
// $argon2id$v=19$m=65536,t=3,p=1$<b64 salt>$<b64 hash>.
func HashSecret(secret string) (string, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifySecret reports whether secret matches the PHC-encoded digest.
// Parameters are taken from the encoded string so older digests keep verifying
// after parameter bumps.
func VerifySecret(secret, encoded string) bool {
	var (
		version    int
		m, t       uint32
		p          uint8
		b64salt    string
		b64key     string
	)
	n, err := fmt.Sscanf(encoded, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &version, &m, &t, &p, &b64salt)
	if err != nil || n != 5 {
		return false
	}
	// the trailing "%s" grabbed "salt$hash"; split it
	for i := 0; i < len(b64salt); i++ {
		if b64salt[i] == '$' {
			b64key = b64salt[i+1:]
			b64salt = b64salt[:i]
			break
		}
	}
	if b64key == "" {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(b64salt)
	if err != nil {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(b64key)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(secret), salt, t, m, p, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1
}
