// Package decision builds the human review packet for a warranty claim.
// BuildReviewPacket is a pure function of its inputs and the supplied
// clock: no side effects, no randomness, identical inputs always produce
// an identical packet.
package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/pkg/types"
)

// daysPerMonth approximates the warranty window; the day count and limit
// are always recorded in the reasoning so a reviewer can audit the math.
const daysPerMonth = 30

// BuildReviewPacket derives a recommendation, confidence, and full audit
// trail from one claim against one selected policy. The shipping address
// never gates the recommendation; it only surfaces as an uncertainty note
// and, after an approval, as an operational follow-up.
func BuildReviewPacket(
	packetID string,
	emailID string,
	claim types.ClaimExtract,
	doc policy.Document,
	selectionReason string,
	excerpts []types.PolicyExcerpt,
	now time.Time,
) types.ReviewPacket {
	checklist := map[string]bool{
		"product_name":      claim.ProductName != "",
		"purchase_date":     claim.PurchaseDate != nil,
		"proof_of_purchase": claim.ProofOfPurchase,
		"shipping_address":  claim.ShippingAddress != "",
	}

	var facts, assumptions, reasoning, uncertainty, followups []string
	issueLower := strings.ToLower(claim.IssueDescription)

	// Facts: claim summary, one line per referenced excerpt.
	facts = append(facts, "Issue reported: "+claim.IssueDescription)
	facts = append(facts, fmt.Sprintf("Selected policy: %s (%s)", doc.ProductName, doc.PolicyID))
	facts = append(facts, "Policy selection reason: "+selectionReason)
	if claim.ProductName != "" {
		facts = append(facts, "Extracted product: "+claim.ProductName)
	} else {
		facts = append(facts, "Product model not confidently identified from the email.")
	}
	if claim.PurchaseDate != nil {
		facts = append(facts, "Purchase date provided: "+claim.PurchaseDate.String())
	} else {
		facts = append(facts, "Exact purchase date not provided in the email.")
	}
	facts = append(facts, fmt.Sprintf("Proof of purchase present: %t", claim.ProofOfPurchase))
	if len(excerpts) > 0 {
		facts = append(facts, "Relevant policy sections reviewed (referenced excerpts):")
		for _, ex := range excerpts {
			facts = append(facts, fmt.Sprintf("- [%s] %s", ex.Section, ex.Excerpt))
		}
	}

	// Warranty window check.
	var inWindow *bool
	if claim.PurchaseDate != nil {
		days := int(now.UTC().Sub(claim.PurchaseDate.Time).Hours() / 24)
		maxDays := doc.WarrantyMonths * daysPerMonth
		v := days <= maxDays
		inWindow = &v
		reasoning = append(reasoning, fmt.Sprintf(
			"Warranty window check: %d days since purchase (limit ~%d days).", days, maxDays))
	} else if strings.Contains(issueLower, "last month") {
		assumptions = append(assumptions,
			"Customer indicates purchase within the last month; likely within warranty window.")
	} else {
		assumptions = append(assumptions,
			"Purchase date missing; cannot confirm warranty window without follow-up.")
	}

	// Exclusion scan. Checks are independent; when several fire, the last
	// one overwrites the earlier reason and only that reason survives into
	// the recommendation.
	hit := func(keywords ...string) bool {
		for _, k := range keywords {
			if strings.Contains(issueLower, k) {
				return true
			}
		}
		return false
	}

	var exclusionReason string
	if hit("voltage converter", "converter", "240v", "220v", "abroad", "international voltage") {
		exclusionReason = "Used with a voltage converter / non-standard voltage (excluded)."
	}
	if hit("travel", "flight", "airline", "suitcase", "luggage") &&
		hit("crack", "cracked", "broken", "damage", "damaged") {
		exclusionReason = "Travel / airline handling damage (excluded)."
	}
	if hit("attachment", "nozzle", "diffuser") &&
		hit("loose", "does not fit", "doesn't fit", "no longer fits", "fits securely") {
		exclusionReason = "Accessory wear/fitment issue (treated as wear & tear / accessory not covered)."
	}

	// Follow-ups for missing information. The shipping address is recorded
	// as an uncertainty note only: it must never influence the
	// recommendation or its confidence.
	if claim.ProductName == "" {
		followups = append(followups, "Please confirm the exact product model name (e.g., AeroDry Pro 1800).")
		uncertainty = append(uncertainty, "Product model missing; policy match may be incorrect.")
	}
	if !claim.ProofOfPurchase {
		followups = append(followups, "Please provide proof of purchase (invoice/receipt or order ID).")
	}
	if claim.PurchaseDate == nil {
		followups = append(followups, "Please confirm the exact purchase date (or share the receipt showing the date).")
	}
	if claim.ShippingAddress == "" {
		uncertainty = append(uncertainty, "Shipping address missing; required to generate return label after approval.")
	}

	// Recommendation resolution: first matching branch wins.
	recommendation := types.RecommendNeedMoreInfo
	confidence := types.ConfidenceLow
	switch {
	case exclusionReason != "":
		recommendation = types.RecommendReject
		confidence = types.ConfidenceHigh
		reasoning = append(reasoning, "Claim matches an exclusion condition: "+exclusionReason)
		if excerpt := findExclusionExcerpt(excerpts); excerpt != "" {
			reasoning = append(reasoning, "Policy basis (exclusion excerpt): "+excerpt)
		} else {
			reasoning = append(reasoning, "Policy basis: exclusion section applies (see referenced excerpts).")
		}

	case inWindow != nil && *inWindow:
		recommendation = types.RecommendApprove
		confidence = types.ConfidenceMedium
		if claim.ProofOfPurchase {
			confidence = types.ConfidenceHigh
		}
		reasoning = append(reasoning, "No applicable exclusions found in the referenced policy sections.")
		reasoning = append(reasoning, "Claim is within the warranty window; approval is recommended.")

	case inWindow != nil && !*inWindow:
		recommendation = types.RecommendReject
		confidence = types.ConfidenceHigh
		reasoning = append(reasoning, "Purchase date indicates the claim is outside the warranty window; rejection is recommended.")

	case strings.Contains(issueLower, "last month"):
		recommendation = types.RecommendApprove
		confidence = types.ConfidenceMedium
		reasoning = append(reasoning, "Customer indicates purchase was last month; likely within warranty window.")
		reasoning = append(reasoning, "Approval is recommended, but exact purchase date must be confirmed.")

	default:
		recommendation = types.RecommendNeedMoreInfo
		confidence = types.ConfidenceLow
		reasoning = append(reasoning, "Cannot confirm warranty eligibility without purchase date.")
	}

	// Post-resolution address patch: an approval with no address gains an
	// operational follow-up but stays APPROVE here. Only the post-decision
	// dispatch may downgrade it.
	if recommendation == types.RecommendApprove && claim.ShippingAddress == "" {
		followups = append(followups, "Please provide your shipping/return address so we can generate the return label.")
		reasoning = append(reasoning, "Shipping address is needed to proceed with logistics after approval (does not affect eligibility).")
	}

	if len(reasoning) == 0 {
		reasoning = append(reasoning, "Recommendation based on available claim details and referenced policy sections.")
	}

	return types.ReviewPacket{
		PacketID:  packetID,
		EmailID:   emailID,
		CreatedAt: now.UTC(),

		Extracted: claim,

		SelectedPolicyID:      doc.PolicyID,
		SelectedPolicyProduct: doc.ProductName,
		PolicySelectionReason: selectionReason,
		ReferencedExcerpts:    excerpts,

		EvidenceChecklist: checklist,

		Recommendation:   recommendation,
		Confidence:       confidence,
		UncertaintyNotes: uncertainty,

		Facts:       facts,
		Assumptions: assumptions,
		Reasoning:   reasoning,

		TriageLabel: types.TriageWarrantyClaim,

		FollowupQuestions: dedupe(followups),

		Stage: types.StageDraft,
	}
}

func findExclusionExcerpt(excerpts []types.PolicyExcerpt) string {
	for _, ex := range excerpts {
		if strings.HasPrefix(strings.ToLower(ex.Section), "exclusion") {
			return ex.Excerpt
		}
	}
	return ""
}

// dedupe removes duplicates preserving first-occurrence order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
