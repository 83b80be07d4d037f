package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes fingerprints file content with SHA-256 and returns the lowercase
// hex digest. Every promoted asset stores its digest for later integrity
// verification; nothing deduplicates on it yet.
func HashBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("cannot hash empty content")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
