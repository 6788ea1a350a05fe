// Package triage separates genuine warranty claims from everything else.
// A configured model backend is tried first; any failure falls back
// silently to the keyword heuristic, so classification never errors.
package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/pkg/types"
)

type Result struct {
	Label  types.TriageLabel `json:"label"`
	Reason string            `json:"reason"`
}

// Config holds the heuristic vocabularies. The claim-signal list is
// deliberately broad: a missed claim costs more than an over-routed one.
type Config struct {
	SpamSignals  []string
	ClaimSignals []string
}

func DefaultConfig() Config {
	return Config{
		SpamSignals: []string{
			"seo", "marketing", "partnership", "promotion", "ads", "advertising", "agency",
		},
		ClaimSignals: []string{
			"warranty", "claim", "replace", "replacement", "refund", "return",
			"bought", "purchase", "purchased", "order", "invoice", "receipt",
			"dryer", "hair dryer", "aerodry",
			"stopped", "not working", "won’t", "won't", "doesn't", "no power",
			"overheat", "overheating", "shuts off", "burning", "sparks",
			"touch", "controls", "firmware",
			"attachment", "nozzle", "diffuser", "doesn't fit", "fits securely",
			"cracked", "broken", "dropped",
			"travel", "flight", "suitcase",
		},
	}
}

type Classifier struct {
	client llm.Client
	cfg    Config
	log    *zap.Logger
}

func NewClassifier(client llm.Client, cfg Config, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{client: client, cfg: cfg, log: log}
}

// Classify labels one email. It never returns an error: a backend failure
// of any kind degrades to the heuristic.
func (c *Classifier) Classify(ctx context.Context, email types.Email) Result {
	if c.client != nil {
		result, err := c.classifyModel(ctx, email)
		if err == nil {
			return result
		}
		c.log.Debug("triage model unavailable, using heuristic",
			zap.String("email_id", email.EmailID),
			zap.Error(err),
		)
	}
	return c.heuristic(email)
}

const classifyPrompt = `You classify emails for a warranty claims system.
If the email is about a product problem, purchase, return, damage, or warranty, label WARRANTY_CLAIM.
If it is marketing, spam, partnership, or sales outreach, label NON_CLAIM.
Return ONLY JSON of the form {"label": "...", "reason": "..."}.

Subject: %s

Body:
%s
`

func (c *Classifier) classifyModel(ctx context.Context, email types.Email) (Result, error) {
	out, err := c.client.Complete(ctx, fmt.Sprintf(classifyPrompt, email.Subject, email.Body))
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal([]byte(llm.StripFences(out)), &result); err != nil {
		return Result{}, fmt.Errorf("malformed triage response: %w", err)
	}
	if result.Label != types.TriageWarrantyClaim && result.Label != types.TriageNonClaim {
		return Result{}, fmt.Errorf("unexpected triage label %q", result.Label)
	}
	if result.Reason == "" {
		result.Reason = "Model classification"
	}
	return result, nil
}

func (c *Classifier) heuristic(email types.Email) Result {
	text := strings.ToLower(email.Subject + " " + email.Body)

	for _, signal := range c.cfg.SpamSignals {
		if strings.Contains(text, signal) {
			return Result{Label: types.TriageNonClaim, Reason: "Spam/marketing outreach signals detected"}
		}
	}
	for _, signal := range c.cfg.ClaimSignals {
		if strings.Contains(text, signal) {
			return Result{Label: types.TriageWarrantyClaim, Reason: "Product issue/purchase/damage signals detected"}
		}
	}
	return Result{Label: types.TriageNonClaim, Reason: "No product issue/purchase/warranty indicators detected"}
}
