package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts. The limit is in bytes,
// so multibyte passwords reach it with fewer characters.
const MaxPasswordBytes = 72

// dummyHash is compared against when no stored hash exists so that a lookup
// miss costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("smsguard-dummy-password"), bcryptCost)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
