package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a work factor taken from config.
type Hasher struct {
	Cost int
}

func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// HashPassword returns the bcrypt digest of password. Errors are surfaced to
// the caller, never downgraded to a weaker digest.
func (h *Hasher) HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches digest. Malformed digests
// count as a mismatch rather than an error.
func (h *Hasher) CheckPassword(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
