// Package service declares the stateless capabilities the auth usecases depend on:
// hashing, OTP generation, token minting and mail delivery.
package service

// PasswordHasher is the credential hasher. Its output embeds salt and cost,
// so Check needs nothing besides the stored string.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Check reports whether password produced hash. A malformed hash never matches.
	Check(password, hash string) bool
}
