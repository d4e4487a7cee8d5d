package reference

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ErrExhausted indicates no unused reference could be found within MaxAttempts
var ErrExhausted = errors.New("could not generate a unique booking reference")

// suffixAlphabet contains the characters used for the random suffix
const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MaxAttempts bounds the uniqueness loop. The 2-character suffix gives 1296
// candidates per millisecond prefix, so hitting this cap means the store
// check itself is broken.
const MaxAttempts = 100

// Generate produces a booking reference of the form SC-<hex-millis>-<2 random chars>.
// The hex timestamp is uppercase and truncated to 10 characters.
func Generate() string {
	ts := time.Now().UnixMilli()
	part1 := fmt.Sprintf("%X", ts)
	if len(part1) > 10 {
		part1 = part1[:10]
	}

	var suffix strings.Builder
	for i := 0; i < 2; i++ {
		suffix.WriteByte(suffixAlphabet[rand.Intn(len(suffixAlphabet))])
	}

	return fmt.Sprintf("SC-%s-%s", part1, suffix.String())
}

// EnsureUnique generates references until exists reports the candidate as
// unused. Uniqueness is probabilistic plus this re-check; the insert itself
// can still race and must treat a duplicate key as a retryable conflict.
func EnsureUnique(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		ref := Generate()
		taken, err := exists(ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if !taken {
			return ref, nil
		}
	}
	return "", ErrExhausted
}
