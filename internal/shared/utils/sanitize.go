package utils

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy     *bluemonday.Policy
	strictPolicyOnce sync.Once
)

func policy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// maxDecodeRounds bounds entity decoding of nested encodings like "&amp;lt;"
const maxDecodeRounds = 4

// SanitizeText strips all markup from user text and collapses whitespace.
// Entities are decoded before sanitizing, so encoded markup is stripped like
// literal markup, and the result is decoded again so "R&D Portal" stays
// readable. Angle brackets never survive.
func SanitizeText(s string) string {
	text := policy().Sanitize(decodeEntities(s))
	text = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, html.UnescapeString(text))
	return strings.Join(strings.Fields(text), " ")
}

func decodeEntities(s string) string {
	for i := 0; i < maxDecodeRounds; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			break
		}
		s = decoded
	}
	return s
}
