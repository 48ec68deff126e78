package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt hashing with a configurable work factor.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher. Non-positive cost falls back to the bcrypt
// default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash produces a salted digest of the plaintext. Two calls on the same input
// yield different digests.
func (h Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Check reports whether the plaintext matches the digest. A malformed digest
// is treated as a mismatch.
func (h Hasher) Check(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
