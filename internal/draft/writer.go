// Package draft produces the customer-facing outputs of a decided claim:
// the reply email body and, for approvals, a mock return shipping label.
package draft

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/pkg/types"
)

// WriterConfig carries the identity lines stamped into every draft.
type WriterConfig struct {
	CompanyName    string `yaml:"company_name"`
	SupportEmail   string `yaml:"support_email"`
	EscalationLine string `yaml:"escalation_line"`
	Signature      string `yaml:"signature"`
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		CompanyName:    "AeroDry Support",
		SupportEmail:   "support@aerodry.example",
		EscalationLine: "If you believe this decision is incorrect, reply to this email with additional details and we will review again.",
		Signature:      "AeroDry Warranty Team",
	}
}

// EmailWriter drafts the reply for each outcome: approval with next steps
// and the label reference, rejection citing the relevant exclusion, or a
// request for the missing information. The model path is optional; the
// templates are always available and any model failure falls back to them.
type EmailWriter struct {
	client llm.Client
	cfg    WriterConfig
	log    *zap.Logger
}

func NewEmailWriter(client llm.Client, cfg WriterConfig, log *zap.Logger) *EmailWriter {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Signature == "" {
		cfg = DefaultWriterConfig()
	}
	return &EmailWriter{client: client, cfg: cfg, log: log}
}

const writerPrompt = `You write clear, professional customer support emails for warranty claims.
Constraints:
- Be concise.
- Be polite and specific.
- For rejections, cite the relevant exclusion or requirement.
- For approvals, include next steps.
- If more info is needed, ask targeted questions only.
Return ONLY the email body (no subject line).

Company: %s
Decision: %s
Customer name: %s
Product: %s
Purchase date: %s
Issue: %s
Policy product: %s
Policy excerpts:
%s
Missing fields: %s
Return label reference (if approved): %s

Write the email body.`

// Draft returns the email body for the packet's current recommendation.
// labelRef is the return label filename for approvals, empty otherwise.
func (w *EmailWriter) Draft(ctx context.Context, packet types.ReviewPacket, doc policy.Document, labelRef string) string {
	if w.client != nil {
		if body, err := w.draftWithModel(ctx, packet, doc, labelRef); err == nil {
			return body
		} else {
			w.log.Debug("model draft failed, using template", zap.Error(err))
		}
	}
	return w.draftTemplate(packet, labelRef)
}

func (w *EmailWriter) draftWithModel(ctx context.Context, packet types.ReviewPacket, doc policy.Document, labelRef string) (string, error) {
	claim := packet.Extracted

	excerptLines := make([]string, 0, len(packet.ReferencedExcerpts))
	for _, ex := range packet.ReferencedExcerpts {
		excerptLines = append(excerptLines, fmt.Sprintf("- [%s] %s", ex.Section, ex.Excerpt))
	}
	excerpts := "None"
	if len(excerptLines) > 0 {
		excerpts = strings.Join(excerptLines, "\n")
	}

	purchaseDate := "Unknown"
	if claim.PurchaseDate != nil {
		purchaseDate = claim.PurchaseDate.String()
	}
	missing := "None"
	if len(claim.MissingFields) > 0 {
		missing = strings.Join(claim.MissingFields, ", ")
	}
	ref := labelRef
	if ref == "" {
		ref = "N/A"
	}

	prompt := fmt.Sprintf(writerPrompt,
		w.cfg.CompanyName,
		packet.Recommendation,
		orDefault(claim.CustomerName, "Customer"),
		productLine(claim, "Unknown product"),
		purchaseDate,
		claim.IssueDescription,
		doc.ProductName,
		excerpts,
		missing,
		ref,
	)

	body, err := w.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("empty draft from model")
	}
	return body, nil
}

func (w *EmailWriter) draftTemplate(packet types.ReviewPacket, labelRef string) string {
	claim := packet.Extracted
	name := orDefault(claim.CustomerName, "Customer")
	product := productLine(claim, "your AeroDry hair dryer")

	switch packet.Recommendation {
	case types.RecommendApprove:
		return w.approveTemplate(name, product, labelRef)
	case types.RecommendReject:
		reason := "the warranty policy terms"
		for _, ex := range packet.ReferencedExcerpts {
			if strings.HasPrefix(strings.ToLower(ex.Section), "exclusion") {
				reason = ex.Excerpt
				break
			}
		}
		return w.rejectTemplate(name, product, reason)
	}

	questions := packet.FollowupQuestions
	if len(questions) == 0 {
		questions = []string{
			"Please provide your proof of purchase (Amazon invoice or order ID).",
			"Please confirm the purchase date.",
			"Please confirm the exact product model name.",
			"Please provide your shipping address.",
		}
	}
	return w.moreInfoTemplate(name, product, questions)
}

func (w *EmailWriter) approveTemplate(name, product, labelRef string) string {
	labelLine := "Return label: (will be provided upon confirmation)"
	if labelRef != "" {
		labelLine = "Return label: " + labelRef
	}
	return fmt.Sprintf(`Hi %s,

Thanks for reaching out. Based on the information provided, we can proceed with your warranty claim for %s.

Next steps:
1) Please package the item securely.
2) Use the return shipping label below to send it back.
3) Once we receive and inspect the unit, we will ship a replacement.

%s

If you have any questions, just reply to this email.

Best regards,
%s`, name, product, labelLine, w.cfg.Signature)
}

func (w *EmailWriter) rejectTemplate(name, product, reason string) string {
	return fmt.Sprintf(`Hi %s,

Thanks for contacting us about your %s. After reviewing your claim, we're unable to approve it under the warranty.

Reason: This issue falls under an exclusion/requirement in the policy (e.g., %s).

%s

Best regards,
%s`, name, product, reason, w.cfg.EscalationLine, w.cfg.Signature)
}

func (w *EmailWriter) moreInfoTemplate(name, product string, questions []string) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, "- "+q)
	}
	return fmt.Sprintf(`Hi %s,

Thanks for reaching out about your %s. We can help, but we need a bit more information to continue processing your warranty claim:

%s

Once you reply with the above details, we'll review and get back to you quickly.

Best regards,
%s`, name, product, strings.Join(lines, "\n"), w.cfg.Signature)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func productLine(claim types.ClaimExtract, fallback string) string {
	if claim.ProductName != "" {
		return claim.ProductName
	}
	if claim.ProductModelHint != "" {
		return claim.ProductModelHint
	}
	return fallback
}
