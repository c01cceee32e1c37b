package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CreateHash gives a stable identifier for a secret so it can key caches and logs without being stored.
func CreateHash(key string) string {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))[:32]
}
