package decision

import (
	"errors"
	"fmt"
	"time"

	"github.com/aerodry/claimflow/pkg/types"
)

var ErrInvalidTransition = errors.New("invalid packet stage transition")

// MarkDecided attaches the human decision to a draft packet, moving it to
// the decided stage. No other packet field changes here.
func MarkDecided(packet *types.ReviewPacket, decision types.HumanDecision, notes string, at time.Time) error {
	if packet.Stage != types.StageDraft {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, packet.Stage, types.StageDecided)
	}
	switch decision {
	case types.DecisionApproved, types.DecisionRejected, types.DecisionMoreInfoRequested:
	default:
		return fmt.Errorf("unknown human decision %q", decision)
	}

	packet.Stage = types.StageDecided
	d := decision
	packet.HumanDecision = &d
	packet.HumanDecisionNotes = notes
	t := at.UTC()
	packet.HumanDecisionAt = &t
	return nil
}

// MarkActioned seals the packet after the post-decision dispatch. Between
// decided and actioned, only the recommendation and the follow-up question
// list may have changed.
func MarkActioned(packet *types.ReviewPacket) error {
	if packet.Stage != types.StageDecided {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, packet.Stage, types.StageActioned)
	}
	packet.Stage = types.StageActioned
	return nil
}
