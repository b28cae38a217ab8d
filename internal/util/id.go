package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns an opaque entity id, stable across the local and
// remote representations. The prefix identifies the collection.
func NewID(prefix string) string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
