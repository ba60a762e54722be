package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash for storage. The cost stays at the
// library default; raising it is a config migration, not a code change here.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

// CompareHashAndPassword reports whether plain matches the stored hash.
func CompareHashAndPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
