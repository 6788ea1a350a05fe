// Package orchestrator drives the two-phase claim workflow: inbox email
// to draft review packet, then human decision to customer-facing outputs.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aerodry/claimflow/internal/decision"
	"github.com/aerodry/claimflow/internal/draft"
	"github.com/aerodry/claimflow/internal/extract"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/internal/triage"
	"github.com/aerodry/claimflow/pkg/types"
)

// Mailroom routes inbox files after triage. A nil Mailroom skips routing,
// which the gateway uses when it serves packets without a file inbox.
type Mailroom interface {
	MoveToTriageRejected(emailID string) (string, error)
	MoveToProcessed(emailID string) (string, error)
}

type Config struct {
	ArchiveProcessed bool `yaml:"archive_processed"`
}

// Outputs is what phase two hands back: the drafted reply and, when a
// label was generated, its filename.
type Outputs struct {
	DraftedEmail string
	LabelRef     string
}

type Orchestrator struct {
	mailroom  Mailroom
	triage    *triage.Classifier
	extractor *extract.Extractor
	catalog   *policy.Catalog
	writer    *draft.EmailWriter
	labels    *draft.LabelGenerator
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

func New(
	mailroom Mailroom,
	classifier *triage.Classifier,
	extractor *extract.Extractor,
	catalog *policy.Catalog,
	writer *draft.EmailWriter,
	labels *draft.LabelGenerator,
	cfg Config,
	log *zap.Logger,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		mailroom:  mailroom,
		triage:    classifier,
		extractor: extractor,
		catalog:   catalog,
		writer:    writer,
		labels:    labels,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessToReviewPacket runs phase one for a single email. A NON_CLAIM
// email is routed to triage_rejected and yields a nil packet; a claim
// yields a draft packet carrying the triage reason as a routing note.
func (o *Orchestrator) ProcessToReviewPacket(ctx context.Context, email types.Email) (*types.ReviewPacket, error) {
	result := o.triage.Classify(ctx, email)
	if result.Label == types.TriageNonClaim {
		if o.mailroom != nil {
			if _, err := o.mailroom.MoveToTriageRejected(email.EmailID); err != nil {
				return nil, fmt.Errorf("orchestrator: route non-claim %s: %w", email.EmailID, err)
			}
		}
		o.log.Info("triage rejected",
			zap.String("email_id", email.EmailID),
			zap.String("reason", result.Reason))
		return nil, nil
	}

	claim := o.extractor.Extract(ctx, email)
	doc, selectionReason := o.catalog.Select(claim)
	excerpts := policy.Excerpts(doc, claim)

	packetID := fmt.Sprintf("pkt_%s_%s", email.EmailID, shortID())
	packet := decision.BuildReviewPacket(packetID, email.EmailID, claim, doc, selectionReason, excerpts, o.now())
	packet.TriageLabel = types.TriageWarrantyClaim
	packet.RoutingNotes = append(packet.RoutingNotes, "Triage reason: "+result.Reason)

	o.log.Info("review packet built",
		zap.String("packet_id", packet.PacketID),
		zap.String("recommendation", string(packet.Recommendation)),
		zap.String("confidence", string(packet.Confidence)))

	if o.cfg.ArchiveProcessed && o.mailroom != nil {
		if _, err := o.mailroom.MoveToProcessed(email.EmailID); err != nil {
			o.log.Warn("archive failed", zap.String("email_id", email.EmailID), zap.Error(err))
		}
	}
	return &packet, nil
}

// DraftOutputsAfterDecision runs phase two: records the human decision,
// rewrites the packet's recommendation to the decided outcome, drafts the
// customer email, and generates the return label when one can be produced.
//
// An approval without a shipping address is downgraded to a more-info
// request asking only for the address; no label is generated. The address
// gates logistics here, never the eligibility call made in phase one.
func (o *Orchestrator) DraftOutputsAfterDecision(
	ctx context.Context,
	packet *types.ReviewPacket,
	doc policy.Document,
	humanDecision types.HumanDecision,
	notes string,
) (Outputs, error) {
	if err := decision.MarkDecided(packet, humanDecision, notes, o.now()); err != nil {
		return Outputs{}, err
	}

	var out Outputs
	switch humanDecision {
	case types.DecisionApproved:
		if packet.Extracted.ShippingAddress == "" {
			packet.Recommendation = types.RecommendNeedMoreInfo
			packet.FollowupQuestions = []string{
				"Please provide your shipping/return address so we can generate the return label.",
			}
			out.DraftedEmail = o.writer.Draft(ctx, *packet, doc, "")
			break
		}
		packet.Recommendation = types.RecommendApprove
		ref, err := o.labels.Generate(packet.Extracted, packet.EmailID, o.now())
		if err != nil {
			return Outputs{}, fmt.Errorf("orchestrator: label for %s: %w", packet.PacketID, err)
		}
		out.LabelRef = ref
		out.DraftedEmail = o.writer.Draft(ctx, *packet, doc, ref)

	case types.DecisionRejected:
		packet.Recommendation = types.RecommendReject
		out.DraftedEmail = o.writer.Draft(ctx, *packet, doc, "")

	default:
		packet.Recommendation = types.RecommendNeedMoreInfo
		out.DraftedEmail = o.writer.Draft(ctx, *packet, doc, "")
	}

	if err := decision.MarkActioned(packet); err != nil {
		return Outputs{}, err
	}

	o.log.Info("outputs drafted",
		zap.String("packet_id", packet.PacketID),
		zap.String("human_decision", string(humanDecision)),
		zap.Bool("label", out.LabelRef != ""))
	return out, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
