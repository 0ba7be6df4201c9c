package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "password"},
		{name: "empty password", password: ""},
		{name: "long password", password: strings.Repeat("correct horse battery staple ", 10)},
		{name: "unicode password", password: "pässwörd-日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := Hash(tt.password)
			require.NoError(t, err)

			assert.True(t, Verify(tt.password, digest), "correct password should verify")
			assert.False(t, Verify(tt.password+"x", digest), "wrong password should not verify")
		})
	}
}

func TestHashProducesSelfDescribingDigest(t *testing.T) {
	digest, err := Hash("password")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$"), "digest should embed scheme and version: %s", digest)
	assert.Contains(t, digest, "m=65536,t=3,p=2", "digest should embed parameters")
}

func TestHashUsesFreshSalt(t *testing.T) {
	first, err := Hash("password")
	require.NoError(t, err)
	second, err := Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must hash differently per call")
	assert.True(t, Verify("password", first))
	assert.True(t, Verify("password", second))
}

func TestVerifyAcceptsLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("password", string(legacy)))
	assert.False(t, Verify("wrong", string(legacy)))
}

func TestVerifyRejectsMalformedDigests(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "unknown scheme", digest: "$scrypt$n=16384$abc$def"},
		{name: "truncated argon2id", digest: "$argon2id$v=19$m=65536,t=3,p=2"},
		{name: "bad base64 salt", digest: "$argon2id$v=19$m=65536,t=3,p=2$!!!$AAAA"},
		{name: "plain text", digest: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify("password", tt.digest))
		})
	}
}

// Out-of-range parameters in a stored digest must be rejected as
// malformed, not handed to the key derivation (which panics on them).
func TestVerifyRejectsOutOfRangeParameters(t *testing.T) {
	valid, err := Hash("password")
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutated string
	}{
		{name: "zero time", mutated: strings.Replace(valid, "t=3", "t=0", 1)},
		{name: "zero threads", mutated: strings.Replace(valid, "p=2", "p=0", 1)},
		{name: "memory below minimum", mutated: strings.Replace(valid, "m=65536", "m=4", 1)},
		{name: "empty key segment", mutated: valid[:strings.LastIndex(valid, "$")+1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, valid, tt.mutated)
			assert.NotPanics(t, func() {
				assert.False(t, Verify("password", tt.mutated))
			})
		})
	}
}
