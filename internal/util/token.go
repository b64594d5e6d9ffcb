package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	TokenLength   = 60
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// TokenGenerator produces opaque activation and password-reset tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

type RandomTokenGenerator struct{}

func (RandomTokenGenerator) Generate() (string, error) {
	return GenerateRandomToken(TokenLength)
}

func GenerateRandomToken(length int) (string, error) {
	if length <= 0 {
		length = TokenLength
	}
	max := big.NewInt(int64(len(tokenAlphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(tokenAlphabet[n.Int64()])
	}
	return builder.String(), nil
}
