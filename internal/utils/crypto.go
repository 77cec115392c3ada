// internal/utils/crypto.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashKey joins the parts with a separator that cannot occur in ids, addresses or signatures.
func HashKey(parts ...string) string {
	return HashString(strings.Join(parts, "|"))
}

func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckAPIKey(apiKey, hash string) bool {
	if apiKey == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}
