package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"drifty/config"
)

// HashPhone hashes a phone number with the configured salt for use as
// key material. Raw numbers never appear in store keys or logs.
func HashPhone(phone string) string {
	key := config.Cfg.PhoneHashSalt

	sum := sha256.Sum256([]byte(key + ":" + phone))

	return hex.EncodeToString(sum[:])
}
