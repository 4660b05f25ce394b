package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash for an account credential. The cost
// comes from AUTH_BCRYPT_COST; a value outside bcrypt's supported range falls
// back to the library default so a bad setting cannot weaken or break the
// seeded accounts.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks a login attempt against the stored hash. The error
// is opaque on purpose; callers surface a generic invalid-credentials message.
func ComparePassword(hash, attempt string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(attempt))
}
