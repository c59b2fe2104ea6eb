package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash fingerprints note content after normalization, so clock skew
// and cosmetic whitespace differences never count as changes.
func ContentHash(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.TrimSpace(normalized)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
