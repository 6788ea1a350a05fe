package policy

import (
	"fmt"
	"strings"

	"github.com/aerodry/claimflow/pkg/types"
)

// Catalog holds the policy documents loaded at startup. It is read-only
// reference data for the lifetime of a run and safe for concurrent readers.
type Catalog struct {
	docs      []Document
	byProduct map[string]int
}

func (c *Catalog) Len() int {
	return len(c.docs)
}

// ProductNames returns all known product names in catalog order.
func (c *Catalog) ProductNames() []string {
	names := make([]string, len(c.docs))
	for i, doc := range c.docs {
		names[i] = doc.ProductName
	}
	return names
}

// ByProductName looks up a policy by exact, case-insensitive product name.
// Absence is a normal outcome, not an error.
func (c *Catalog) ByProductName(name string) (Document, bool) {
	i, ok := c.byProduct[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Document{}, false
	}
	return c.docs[i], true
}

// Select picks the policy for a claim. The tie-break chain runs in order
// and the first rule that succeeds wins:
//
//  1. exact case-insensitive match on the extracted product name
//  2. token overlap against the product model hint
//  3. token overlap against product name + hint + issue description
//  4. first policy in catalog order
//
// Given a non-empty catalog it always returns a policy, together with a
// reviewer-readable statement of which rule fired.
func (c *Catalog) Select(claim types.ClaimExtract) (Document, string) {
	if claim.ProductName != "" {
		if doc, ok := c.ByProductName(claim.ProductName); ok {
			return doc, fmt.Sprintf("Exact match on product_name=%q.", claim.ProductName)
		}
	}

	if hint := strings.TrimSpace(claim.ProductModelHint); hint != "" {
		if doc, ok := c.bestMatch(hint); ok {
			return doc, fmt.Sprintf("Matched policy using product_model_hint=%q.", hint)
		}
	}

	combined := strings.TrimSpace(strings.Join([]string{
		claim.ProductName, claim.ProductModelHint, claim.IssueDescription,
	}, " "))
	if doc, ok := c.bestMatch(combined); ok {
		return doc, "Selected best-matching policy using token overlap on claim text."
	}

	return c.docs[0], "Fallback: defaulted to first policy (no match found)."
}

// bestMatch returns the highest-scoring policy for the text. Ties go to the
// earlier document in catalog order; a best score of zero is no match.
func (c *Catalog) bestMatch(text string) (Document, bool) {
	if text == "" {
		return Document{}, false
	}
	textTokens := tokenize(text)

	best := -1
	bestScore := 0
	for i, doc := range c.docs {
		if score := matchScore(text, textTokens, doc.ProductName); score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return Document{}, false
	}
	return c.docs[best], true
}
