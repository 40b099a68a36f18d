package util

import (
	"crypto/rand"
	"math/big"
)

const (
	DefaultTokenLength = 8
	MinTokenLength     = 7
	MaxTokenLength     = 14
)

// Alphabet is the URL-safe character set tokens are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// GenerateToken returns a random token of the given length. Lengths outside
// [MinTokenLength, MaxTokenLength] fall back to DefaultTokenLength.
func GenerateToken(length int) string {
	if length < MinTokenLength || length > MaxTokenLength {
		length = DefaultTokenLength
	}

	max := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, length)

	for i := range b {
		rn, _ := rand.Int(rand.Reader, max)
		b[i] = Alphabet[rn.Int64()]
	}

	return string(b)
}
