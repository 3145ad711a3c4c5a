package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	// Rolling is a 32-bit multiplicative rolling hash. It exists for hosts
	// without a cryptographic digest and is not collision resistant.
	Rolling HashAlgorithm = "rolling"
)

// Hasher provides hashing over a selectable algorithm
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a SHA-256 hasher
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash computes a lowercase hex digest of data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case Rolling:
		return RollingHash(data)
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a digest of the UTF-8 bytes of s
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// RollingHash computes h = h*31 + b over data, wrapped to 32 bits, as hex.
func RollingHash(data []byte) string {
	var h uint32
	for _, b := range data {
		h = h*31 + uint32(b)
	}
	return fmt.Sprintf("%08x", h)
}
