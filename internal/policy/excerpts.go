package policy

import (
	"fmt"
	"sort"

	"github.com/aerodry/claimflow/pkg/types"
)

// Excerpts assembles the grounding citations for a claim against one
// policy. Section order within a packet is fixed: Warranty Period, Covered
// Issues (ranked against the issue text, top 3), Exclusions (ranked top 3,
// or the first two raw exclusions when nothing overlaps, so the reviewer
// still sees exclusion context), then every Required Proof clause in
// catalog order.
func Excerpts(doc Document, claim types.ClaimExtract) []types.PolicyExcerpt {
	issueTokens := tokenize(claim.IssueDescription)

	excerpts := []types.PolicyExcerpt{{
		Section:  types.SectionWarrantyPeriod,
		Excerpt:  fmt.Sprintf("%d months from purchase date", doc.WarrantyMonths),
		PolicyID: doc.PolicyID,
	}}

	for _, clause := range topRanked(doc.CoveredIssues, issueTokens, 3) {
		excerpts = append(excerpts, types.PolicyExcerpt{
			Section:  types.SectionCoveredIssues,
			Excerpt:  clause,
			PolicyID: doc.PolicyID,
		})
	}

	exclusions := topRanked(doc.Exclusions, issueTokens, 3)
	if !anyOverlap(doc.Exclusions, issueTokens) {
		exclusions = doc.Exclusions
		if len(exclusions) > 2 {
			exclusions = exclusions[:2]
		}
	}
	for _, clause := range exclusions {
		excerpts = append(excerpts, types.PolicyExcerpt{
			Section:  types.SectionExclusions,
			Excerpt:  clause,
			PolicyID: doc.PolicyID,
		})
	}

	for _, clause := range doc.RequiredProof {
		excerpts = append(excerpts, types.PolicyExcerpt{
			Section:  types.SectionRequiredProof,
			Excerpt:  clause,
			PolicyID: doc.PolicyID,
		})
	}

	return excerpts
}

// topRanked orders clauses by descending token overlap with the issue
// text. The sort is stable so equal scores keep policy order.
func topRanked(clauses []string, issueTokens map[string]struct{}, limit int) []string {
	type scored struct {
		clause string
		score  int
	}
	ranked := make([]scored, len(clauses))
	for i, clause := range clauses {
		ranked[i] = scored{clause: clause, score: overlap(tokenize(clause), issueTokens)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.clause
	}
	return out
}

func anyOverlap(clauses []string, issueTokens map[string]struct{}) bool {
	for _, clause := range clauses {
		if overlap(tokenize(clause), issueTokens) > 0 {
			return true
		}
	}
	return false
}
