package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

const joinKeyLength = 6
const joinKeyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinKey returns a 6-character uppercase alphanumeric school join key.
func GenerateJoinKey() string {
	return GenerateRandomString(joinKeyLength, joinKeyCharset)
}
