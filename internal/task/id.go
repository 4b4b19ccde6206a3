package task

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"time"
)

const (
	minIDLength = 3
	maxIDLength = 8
	nonceSize   = 16
)

// GenerateID creates a short base36 ID from a hash of seed, createdAt and a random nonce.
// The ID starts at minIDLength characters and grows until existsFn reports no collision.
func GenerateID(seed string, createdAt time.Time, existsFn func(string) bool) string {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	h := sha256.New()
	h.Write([]byte(seed))
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	h.Write(nonce)
	encoded := new(big.Int).SetBytes(h.Sum(nil)).Text(36)

	for length := minIDLength; length <= maxIDLength && length <= len(encoded); length++ {
		if candidate := encoded[:length]; !existsFn(candidate) {
			return candidate
		}
	}
	return encoded[:min(maxIDLength, len(encoded))]
}
