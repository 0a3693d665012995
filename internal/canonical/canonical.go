// Package canonical normalizes claim text and derives the deterministic
// content fingerprint used as the deduplication key. It is a dedup key,
// not a security primitive.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// idPrefix versions the fingerprint so a future normalization change can
// coexist with stored ids.
const idPrefix = "claim:v1:"

// Normalize lower-cases, Unicode-normalizes (NFKC), strips quotes, brackets
// and punctuation, and collapses whitespace. Pure function.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			// Quotes, brackets, punctuation and symbols all become
			// separators so "Tempo 30!" and "tempo 30" align.
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ID returns the canonical fingerprint of already-normalized text. Equal
// normalized text always yields an equal id.
func ID(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return idPrefix + hex.EncodeToString(sum[:])
}

// IDFor is shorthand for ID(Normalize(text)).
func IDFor(text string) string {
	return ID(Normalize(text))
}

// Tokens splits normalized text into its whitespace token set, the input to
// Jaccard similarity.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
