package policy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenize lowercases and NFKC-normalizes s, strips non-alphanumerics, and
// keeps tokens of at least three characters. Policy selection and excerpt
// ranking share this single primitive so their scores cannot drift apart.
func tokenize(s string) map[string]struct{} {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) >= 3 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

// substringBonus awarded when a candidate product name appears whole
// inside the claim text.
const substringBonus = 3

// matchScore scores a candidate product name against free claim text.
func matchScore(text string, textTokens map[string]struct{}, productName string) int {
	score := overlap(textTokens, tokenize(productName))
	if strings.Contains(strings.ToLower(text), strings.ToLower(productName)) {
		score += substringBonus
	}
	return score
}
