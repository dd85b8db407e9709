package service

// OTPGenerator issues one-time verification codes.
type OTPGenerator interface {
	// Generate returns a fresh 6-digit code and its hash. Only the hash may be stored.
	Generate() (code string, codeHash string, err error)

	// Hash is deterministic so a submitted code can be compared with a stored hash.
	Hash(code string) string

	// Matches compares a submitted code against a stored hash in constant time.
	Matches(code, codeHash string) bool
}
