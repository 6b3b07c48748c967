package service

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

var compareHashAndPassword = bcrypt.CompareHashAndPassword

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// decoyHash returns a hash of a random secret at the current cost. Logins
// without a real hash compare against it so every rejection costs one bcrypt
// comparison.
func decoyHash() string {
	dummyHashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), passwordCost)
		if err != nil {
			panic(fmt.Sprintf("failed to build decoy hash: %v", err))
		}
		dummyHash = string(b)
	})
	return dummyHash
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return compareHashAndPassword([]byte(hash), []byte(password)) == nil
}
