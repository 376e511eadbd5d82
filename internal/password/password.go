// Package password wraps bcrypt hashing behind a small interface so the
// auth flow never touches hash internals.
package password

import "golang.org/x/crypto/bcrypt"

// Cost is the fixed bcrypt work factor. It matches the 10 rounds the
// stored hashes were produced with; changing it would invalidate nothing
// (bcrypt embeds the cost) but new hashes must stay comparable in cost.
const Cost = 10

// Hasher hashes and verifies credentials.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Bcrypt is the production Hasher.
//
// Bcrypt instances are stateless and safe for concurrent use.
type Bcrypt struct{}

// NewBcrypt returns a bcrypt-backed Hasher with the fixed cost.
func NewBcrypt() Bcrypt { return Bcrypt{} }

// Hash derives a salted bcrypt hash of plaintext.
func (Bcrypt) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed or truncated
// hash yields false, never an error; the comparison itself is
// constant-time inside bcrypt.
func (Bcrypt) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
