// Package password implements the credential verifier: one-way, salted
// password hashing via bcrypt with a configurable cost factor.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. The cost factor is fixed at
// construction; bcrypt salts internally and owns the comparison semantics.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given bcrypt cost. Costs outside
// the range bcrypt supports fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a one-way digest of the plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
