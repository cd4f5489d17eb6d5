package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the randomness source behind card generation and ball
// shuffling. Tests substitute a deterministic implementation.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}

// Between returns a uniformly chosen int in [min, max]
func Between(r Random, min, max int) int {
	return min + r.Intn(max-min+1)
}

// Shuffle permutes values in place with Fisher-Yates: for i from
// len-1 down to 1, swap values[i] with a uniformly chosen index in [0, i].
func Shuffle(r Random, values []int) {
	for i := len(values) - 1; i >= 1; i-- {
		j := r.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}
