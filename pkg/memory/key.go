package memory

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

// MaxKeyLength caps generated keys.
const MaxKeyLength = 50

var (
	keyStrip      = regexp.MustCompile(`[^a-z0-9\s]`)
	keyWhitespace = regexp.MustCompile(`\s+`)
)

// GenerateKey derives a snake_case key from free text: lowercase, keep only
// ASCII letters, digits and whitespace, join words with "_" and cap the
// result at MaxKeyLength. Content with no usable characters yields
// "memory_" followed by 8 random hex digits.
func GenerateKey(content string) string {
	key := keyStrip.ReplaceAllString(strings.ToLower(content), "")
	key = keyWhitespace.ReplaceAllString(strings.TrimSpace(key), "_")
	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}
	if key == "" {
		return "memory_" + randomHex(4)
	}
	return key
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
