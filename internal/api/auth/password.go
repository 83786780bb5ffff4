package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt cost for new hashes. Stored hashes below it are
// upgraded on the next successful login.
const passwordCost = bcrypt.DefaultCost

var ErrEmptyPassword = errors.New("password is required")

// HashPassword returns the bcrypt hash stored in profiles.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash was produced with a weaker cost than
// passwordCost, or is not a bcrypt hash at all.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < passwordCost
}
