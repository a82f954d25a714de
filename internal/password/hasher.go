// Package password hashes and verifies user passwords.
package password

// Hasher produces salted one-way hashes and checks plaintexts against them.
type Hasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is not an error.
	Verify(password, hash string) (bool, error)
}
