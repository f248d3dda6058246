package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$"))
	assert.True(t, Verify("s3cret", encoded))
	assert.False(t, Verify("S3cret", encoded))

	again, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salts differ")
}

func TestVerifyLegacySHA256(t *testing.T) {
	// sha256("admin123")
	legacy := "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
	assert.True(t, Verify("admin123", legacy))
	assert.True(t, Verify("admin123", strings.ToUpper(legacy)))
	assert.False(t, Verify("admin124", legacy))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!$aGFzaA",
	} {
		assert.False(t, Verify("anything", encoded), encoded)
	}
}
