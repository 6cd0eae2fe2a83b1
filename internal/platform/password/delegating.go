package password

import (
	"errors"
	"strings"
)

// ErrUnknownFormat is returned when a stored hash matches no registered algorithm.
var ErrUnknownFormat = errors.New("password: unknown hash format")

// Hasher is the contract every algorithm in this package satisfies.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// Delegating hashes new passwords with one algorithm and verifies stored hashes
// with whichever algorithm produced them, identified by the hash prefix.
// This lets the hashing algorithm change without invalidating existing users.
type Delegating struct {
	encoder Hasher
	bcrypt  *Bcrypt
	argon2  *Argon2
}

// NewDelegating returns a Delegating hasher that encodes with encoder.
func NewDelegating(encoder Hasher, bcrypt *Bcrypt, argon2 *Argon2) *Delegating {
	return &Delegating{encoder: encoder, bcrypt: bcrypt, argon2: argon2}
}

// Hash encodes password with the configured encoder.
func (d *Delegating) Hash(password string) (string, error) {
	return d.encoder.Hash(password)
}

// Verify dispatches on the hash prefix.
func (d *Delegating) Verify(hash, password string) (bool, error) {
	switch {
	case isBcrypt(hash) && d.bcrypt != nil:
		return d.bcrypt.Verify(hash, password)
	case strings.HasPrefix(hash, "$"+argon2Algorithm+"$") && d.argon2 != nil:
		return d.argon2.Verify(hash, password)
	default:
		return false, ErrUnknownFormat
	}
}

func isBcrypt(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
