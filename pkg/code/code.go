// Package code generates short random codes for ride identification and
// chat access. Codes gate chat-channel entry, so the random source is
// crypto/rand, not math/rand.
package code

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxAttempts bounds collision retries in GenerateUnique.
const maxAttempts = 5

var ErrSpaceExhausted = errors.New("code space exhausted: too many collisions")

// Generate returns a code of n characters drawn uniformly from Alphabet.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid code length %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// len(Alphabet) == 36 does not divide 256, so reject bytes in the
	// truncated tail to keep the distribution uniform.
	const limit = 256 - 256%len(Alphabet)
	out := make([]byte, n)
	for i := 0; i < n; {
		b := buf[i]
		if int(b) >= limit {
			if _, err := rand.Read(buf[i : i+1]); err != nil {
				return "", err
			}
			continue
		}
		out[i] = Alphabet[int(b)%len(Alphabet)]
		i++
	}
	return string(out), nil
}

// GenerateUnique generates codes until exists reports false, retrying at
// most maxAttempts times. exists typically checks a unique column.
func GenerateUnique(n int, exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		c, err := Generate(n)
		if err != nil {
			return "", err
		}
		taken, err := exists(c)
		if err != nil {
			return "", err
		}
		if !taken {
			return c, nil
		}
	}
	return "", ErrSpaceExhausted
}
