package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a storable credential from a plain-text
// password. The password is SHA-256 pre-hashed so the input to bcrypt
// has a fixed length (bcrypt truncates past 72 bytes), then salted and
// hashed with bcrypt. Hashing the same password twice yields different
// credentials.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password is the one the credential was
// derived from. A malformed credential is a verification failure, not
// an error. The underlying bcrypt comparison is constant time.
func CheckPassword(password, credential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(credential), prehash(password)) == nil
}

func prehash(password string) []byte {
	digest := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(digest[:]))
}
