package types

import "time"

type Recommendation string

const (
	RecommendApprove      Recommendation = "APPROVE"
	RecommendReject       Recommendation = "REJECT"
	RecommendNeedMoreInfo Recommendation = "NEED_MORE_INFO"
)

type TriageLabel string

const (
	TriageWarrantyClaim TriageLabel = "WARRANTY_CLAIM"
	TriageNonClaim      TriageLabel = "NON_CLAIM"
)

type HumanDecision string

const (
	DecisionApproved          HumanDecision = "APPROVED"
	DecisionRejected          HumanDecision = "REJECTED"
	DecisionMoreInfoRequested HumanDecision = "MORE_INFO_REQUESTED"
)

// PacketStage tracks the packet lifecycle. A packet is built once (draft),
// receives exactly one human decision (decided), and is patched once by the
// post-decision dispatch (actioned).
type PacketStage string

const (
	StageDraft    PacketStage = "draft"
	StageDecided  PacketStage = "decided"
	StageActioned PacketStage = "actioned"
)

// Excerpt section labels form a small fixed vocabulary.
const (
	SectionWarrantyPeriod = "Warranty Period"
	SectionCoveredIssues  = "Covered Issues"
	SectionExclusions     = "Exclusions"
	SectionRequiredProof  = "Required Proof"
)

// PolicyExcerpt is a short attributed quotation from a policy, included in
// the packet so a reviewer can audit the grounding of the recommendation.
type PolicyExcerpt struct {
	Section  string `json:"section"`
	Excerpt  string `json:"excerpt"`
	PolicyID string `json:"policy_id,omitempty"`
}

// ReviewPacket is the audit artifact handed to a human reviewer. Facts,
// assumptions, reasoning, and uncertainty notes are kept in separate
// append-only lists; evidence is never merged with inference.
type ReviewPacket struct {
	PacketID  string    `json:"packet_id"`
	EmailID   string    `json:"email_id"`
	CreatedAt time.Time `json:"created_at"`

	Extracted ClaimExtract `json:"extracted"`

	SelectedPolicyID      string          `json:"selected_policy_id"`
	SelectedPolicyProduct string          `json:"selected_policy_product_name"`
	PolicySelectionReason string          `json:"policy_selection_reason"`
	ReferencedExcerpts    []PolicyExcerpt `json:"referenced_policy_excerpts,omitempty"`

	EvidenceChecklist map[string]bool `json:"evidence_checklist"`

	Recommendation   Recommendation `json:"recommendation"`
	Confidence       Confidence     `json:"confidence"`
	UncertaintyNotes []string       `json:"uncertainty_notes,omitempty"`

	Facts       []string `json:"facts,omitempty"`
	Assumptions []string `json:"assumptions,omitempty"`
	Reasoning   []string `json:"reasoning,omitempty"`

	TriageLabel  TriageLabel `json:"triage_label"`
	RoutingNotes []string    `json:"routing_notes,omitempty"`

	FollowupQuestions []string `json:"customer_followup_questions,omitempty"`

	Stage PacketStage `json:"stage"`

	HumanDecision      *HumanDecision `json:"human_decision,omitempty"`
	HumanDecisionNotes string         `json:"human_decision_notes,omitempty"`
	HumanDecisionAt    *time.Time     `json:"human_decision_at,omitempty"`
}
