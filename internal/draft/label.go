package draft

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aerodry/claimflow/pkg/types"
)

// LabelConfig controls where labels land and the carrier lines printed on
// them. The carrier is mocked; no shipping API is involved.
type LabelConfig struct {
	OutboxDir    string `yaml:"outbox_dir"`
	CarrierName  string `yaml:"carrier_name"`
	ServiceLevel string `yaml:"service_level"`
	FromAddress  string `yaml:"from_address"`
}

func DefaultLabelConfig(outboxDir string) LabelConfig {
	return LabelConfig{
		OutboxDir:    outboxDir,
		CarrierName:  "MockShip",
		ServiceLevel: "Ground",
		FromAddress:  "AeroDry Returns Dept, 100 Returns Lane, Newark, NJ 07102",
	}
}

// LabelGenerator writes a mock return shipping label as a text file in the
// outbox and returns its filename for inclusion in the approval email.
type LabelGenerator struct {
	cfg LabelConfig
}

func NewLabelGenerator(cfg LabelConfig) (*LabelGenerator, error) {
	if cfg.OutboxDir == "" {
		return nil, fmt.Errorf("label generator: outbox dir is required")
	}
	if err := os.MkdirAll(cfg.OutboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("label generator: create outbox: %w", err)
	}
	if cfg.CarrierName == "" {
		cfg.CarrierName = "MockShip"
	}
	if cfg.ServiceLevel == "" {
		cfg.ServiceLevel = "Ground"
	}
	return &LabelGenerator{cfg: cfg}, nil
}

// Generate writes the label file and returns its filename. A claim with no
// shipping address still gets a label carrying the CUSTOMER_ADDRESS_MISSING
// placeholder; callers decide whether to generate at all.
func (g *LabelGenerator) Generate(claim types.ClaimExtract, emailID string, now time.Time) (string, error) {
	labelID := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	filename := fmt.Sprintf("return_label_%s_%s.txt", emailID, labelID)

	toAddress := claim.ShippingAddress
	if toAddress == "" {
		toAddress = "CUSTOMER_ADDRESS_MISSING"
	}

	contents := fmt.Sprintf(`=== RETURN SHIPPING LABEL (MOCK) ===
Created: %s
Carrier: %s
Service: %s
Tracking: %s

FROM:
%s

TO:
%s

Item: %s
RMA: MOCK-RMA-0001
Instructions: Print this label and attach to your package.
`,
		now.UTC().Format(time.RFC3339),
		g.cfg.CarrierName,
		g.cfg.ServiceLevel,
		trackingNumber(labelID),
		g.cfg.FromAddress,
		toAddress,
		productLine(claim, "Hair Dryer"),
	)

	path := filepath.Join(g.cfg.OutboxDir, filename)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("label generator: write %s: %w", filename, err)
	}
	return filename, nil
}

func trackingNumber(seed string) string {
	return "MS" + strings.ToUpper(seed) + "US"
}
