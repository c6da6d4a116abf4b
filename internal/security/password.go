package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor. A fresh random salt is generated per call and
// embedded in the encoded output, so verification needs no extra state.
const hashCost = 10

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
// The comparison inside bcrypt is constant-time; a mismatch is an
// error, never a panic.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
