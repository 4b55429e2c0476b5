// Package service declares the ports the usecases depend on: hashing, tokens,
// OAuth verification, payments, QR rendering and event publishing.
package service

// PasswordHasher hashes and checks email/password credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Check reports whether password matches hash; a malformed hash never matches.
	Check(password, hash string) bool
	// ValidatePasswordStrength returns an error naming the first policy rule password breaks.
	ValidatePasswordStrength(password string) error
}
