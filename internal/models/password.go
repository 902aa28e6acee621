package models

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var compareHash = bcrypt.CompareHashAndPassword

// placeholderHash stands in for accounts that do not exist or have no
// password yet, at the cost new passwords are hashed with.
var placeholderHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("arogyam-placeholder-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// VerifyPassword reports whether password matches hash. An empty hash still
// runs a full bcrypt comparison so a missing account answers as slowly as a
// wrong password.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		_ = compareHash(placeholderHash(), []byte(password))
		return false
	}
	return compareHash([]byte(hash), []byte(password)) == nil
}
