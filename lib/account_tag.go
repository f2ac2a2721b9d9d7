package lib

import (
	"crypto/sha256"
	"encoding/hex"
)

// AccountTag is a stable directory-safe identifier for an account
func AccountTag(host, address string) string {
	hasher := sha256.New()
	hasher.Write([]byte(address))
	hasher.Write([]byte(":"))
	hasher.Write([]byte(host))
	hasher.Write([]byte("\n"))
	return hex.EncodeToString(hasher.Sum(nil))[:32]
}
