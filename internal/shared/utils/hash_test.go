package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256KnownVector(t *testing.T) {
	h := DefaultHasher()

	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		h.HashString("hello"),
	)
	assert.Equal(t, SHA256, h.Algorithm())
}

func TestHashDeterministic(t *testing.T) {
	for _, algo := range []HashAlgorithm{SHA256, Rolling} {
		t.Run(string(algo), func(t *testing.T) {
			h := NewHasher(algo)
			assert.Equal(t, h.HashString("payload"), h.HashString("payload"))
			assert.NotEqual(t, h.HashString("payload"), h.HashString("payload2"))
		})
	}
}

func TestRollingHash(t *testing.T) {
	assert.Equal(t, "00000000", RollingHash(nil))
	// 'a' = 97 = 0x61
	assert.Equal(t, "00000061", RollingHash([]byte("a")))
	// 97*31 + 98 = 3105 = 0xc21
	assert.Equal(t, "00000c21", RollingHash([]byte("ab")))
}
