// Package password hashes and verifies user passwords.
//
// Hash always produces an argon2id digest in the standard encoded form.
// Verify additionally accepts bcrypt digests so that stored credentials
// from the previous scheme keep working until they are rehashed.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedDigest is returned when a stored digest cannot be parsed.
var ErrMalformedDigest = errors.New("password: malformed digest")

// argon2id parameters for newly produced digests.
const (
	argonMemory  uint32 = 64 * 1024
	argonTime    uint32 = 3
	argonThreads uint8  = 2
	argonSaltLen        = 16
	argonKeyLen  uint32 = 32
)

// Hash derives an argon2id digest from the password with a fresh random
// salt. The encoded form embeds the scheme, version, and parameters, so
// Verify needs nothing but the digest itself.
func Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether the password matches the digest. Both argon2id
// and legacy bcrypt digests are accepted. Comparison is constant time
// with respect to the derived key.
func Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(password, digest)
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	default:
		return false
	}
}

func verifyArgon2id(password, digest string) bool {
	salt, key, memory, time, threads, err := decodeArgon2id(digest)
	if err != nil {
		return false
	}

	derived := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// decodeArgon2id parses the encoded form
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
func decodeArgon2id(digest string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	// argon2.IDKey panics on parameters outside its accepted range, so a
	// corrupt stored digest must be rejected here rather than derived.
	if time < 1 || threads < 1 || memory < 8*uint32(threads) || len(key) < 1 {
		return nil, nil, 0, 0, 0, ErrMalformedDigest
	}

	return salt, key, memory, time, threads, nil
}
