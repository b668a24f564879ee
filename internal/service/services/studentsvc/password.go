package studentsvc

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyHashLen is the length of the hex SHA-256 hashes found in older tables.
const legacyHashLen = sha256.Size * 2

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// checkPassword verifies password against a bcrypt hash or a legacy hex SHA-256 hash.
func checkPassword(hash, password string) bool {
	if isLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		candidate := hex.EncodeToString(sum[:])

		return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(hash))) == 1
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isLegacyHash(hash string) bool {
	if len(hash) != legacyHashLen {
		return false
	}
	_, err := hex.DecodeString(hash)

	return err == nil
}
