// Package extract turns a raw email into a structured claim record. A
// configured model backend is tried first; on any failure the deterministic
// heuristic path takes over. Post-processing (product normalization,
// missing-field derivation, confidence scoring) is identical on both paths
// so the packet never depends on which path produced the fields.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/pkg/types"
)

const (
	maxIssueChars   = 400
	defaultRetailer = "Amazon"
)

// Config is fixed at construction time; the known-products list comes from
// the policy catalog so normalization can only produce selectable products.
type Config struct {
	KnownProducts  []string
	RequireAddress bool
}

type Extractor struct {
	client llm.Client
	cfg    Config
	log    *zap.Logger
}

func NewExtractor(client llm.Client, cfg Config, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{client: client, cfg: cfg, log: log}
}

// rawExtract is the intermediate form shared by the model and heuristic
// paths, before post-processing.
type rawExtract struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ProductName      string `json:"product_name"`
	ProductModelHint string `json:"product_model_hint"`
	SerialNumber     string `json:"serial_number"`

	PurchaseDate string `json:"purchase_date"`
	OrderID      string `json:"order_id"`
	Retailer     string `json:"retailer"`

	IssueDescription string   `json:"issue_description"`
	ShippingAddress  string   `json:"shipping_address"`
	EvidenceProvided []string `json:"evidence_provided"`
	ProofOfPurchase  bool     `json:"proof_of_purchase_present"`
}

// Extract builds the claim record for one email. It never returns an
// error: a backend failure of any kind degrades to the heuristic path.
func (e *Extractor) Extract(ctx context.Context, email types.Email) types.ClaimExtract {
	var raw rawExtract
	if e.client != nil {
		modelRaw, err := e.extractModel(ctx, email)
		if err == nil {
			raw = modelRaw
		} else {
			e.log.Debug("extraction model unavailable, using heuristic",
				zap.String("email_id", email.EmailID),
				zap.Error(err),
			)
			raw = e.heuristic(email)
		}
	} else {
		raw = e.heuristic(email)
	}
	return e.finalize(email, raw)
}

const extractPrompt = `You extract structured fields from warranty claim emails.
Return ONLY valid JSON with these keys: customer_name, customer_email,
customer_phone, product_name, product_model_hint, serial_number,
purchase_date, order_id, retailer, issue_description, shipping_address,
evidence_provided (list of strings), proof_of_purchase_present (boolean).
Use an empty string for any field that is not present.
Normalize product_name to one of these known products when possible: %s
purchase_date must be ISO format YYYY-MM-DD if present.

Subject: %s

Body:
%s

Attachments (filenames only): %s
`

func (e *Extractor) extractModel(ctx context.Context, email types.Email) (rawExtract, error) {
	prompt := fmt.Sprintf(extractPrompt,
		strings.Join(e.cfg.KnownProducts, ", "),
		email.Subject,
		email.Body,
		strings.Join(email.Attachments, ", "),
	)

	out, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return rawExtract{}, err
	}

	var raw rawExtract
	if err := json.Unmarshal([]byte(llm.StripFences(out)), &raw); err != nil {
		return rawExtract{}, fmt.Errorf("malformed extraction response: %w", err)
	}
	if strings.TrimSpace(raw.IssueDescription) == "" {
		return rawExtract{}, fmt.Errorf("extraction response missing issue_description")
	}
	return raw, nil
}

var orderIDPattern = regexp.MustCompile(`(?i)order\s*(?:id|#)\s*[:\-]?\s*([A-Za-z0-9\-]+)`)

func (e *Extractor) heuristic(email types.Email) rawExtract {
	text := email.Subject + "\n" + email.Body
	lower := strings.ToLower(text)

	var productGuess string
	for _, product := range e.cfg.KnownProducts {
		if strings.Contains(lower, strings.ToLower(product)) {
			productGuess = product
			break
		}
	}

	var orderID string
	if m := orderIDPattern.FindStringSubmatch(text); m != nil {
		orderID = m[1]
	}

	var purchaseDate string
	if d, ok := findDate(text); ok {
		purchaseDate = d.String()
	}

	proof := false
	for _, a := range email.Attachments {
		name := strings.ToLower(a)
		if strings.Contains(name, "invoice") || strings.Contains(name, "receipt") || strings.Contains(name, "order") {
			proof = true
			break
		}
	}

	issue := strings.TrimSpace(email.Body)
	if len(issue) > maxIssueChars {
		issue = issue[:maxIssueChars] + "..."
	}

	var evidence []string
	if len(email.Attachments) > 0 {
		evidence = []string{"attachments_present"}
	}

	return rawExtract{
		CustomerName:     email.CustomerName,
		CustomerEmail:    email.CustomerMail,
		ProductName:      productGuess,
		PurchaseDate:     purchaseDate,
		OrderID:          orderID,
		Retailer:         defaultRetailer,
		IssueDescription: issue,
		EvidenceProvided: evidence,
		ProofOfPurchase:  proof,
	}
}

// finalize applies the shared post-processing to either path's output.
func (e *Extractor) finalize(email types.Email, raw rawExtract) types.ClaimExtract {
	var purchaseDate *types.Date
	if raw.PurchaseDate != "" {
		if d, ok := parseDate(raw.PurchaseDate); ok {
			purchaseDate = &d
		}
	}

	proof := raw.ProofOfPurchase || proofFromAttachments(email.Attachments)

	product := e.normalizeProduct(firstNonEmpty(raw.ProductName, raw.ProductModelHint))

	issue := strings.TrimSpace(raw.IssueDescription)

	var missing []string
	if product == "" {
		missing = append(missing, "product_name")
	}
	if purchaseDate == nil {
		missing = append(missing, "purchase_date")
	}
	if issue == "" {
		missing = append(missing, "issue_description")
	}
	if !proof {
		missing = append(missing, "proof_of_purchase")
	}
	if e.cfg.RequireAddress && raw.ShippingAddress == "" {
		missing = append(missing, "shipping_address")
	}

	confidence := types.ConfidenceHigh
	switch {
	case len(missing) >= 3:
		confidence = types.ConfidenceLow
	case len(missing) >= 1:
		confidence = types.ConfidenceMedium
	}

	retailer := raw.Retailer
	if retailer == "" {
		retailer = defaultRetailer
	}

	return types.ClaimExtract{
		CustomerName:  firstNonEmpty(raw.CustomerName, email.CustomerName),
		CustomerEmail: firstNonEmpty(raw.CustomerEmail, email.CustomerMail),
		CustomerPhone: raw.CustomerPhone,

		ProductName:      product,
		ProductModelHint: raw.ProductModelHint,
		SerialNumber:     raw.SerialNumber,

		PurchaseDate: purchaseDate,
		OrderID:      raw.OrderID,
		Retailer:     retailer,

		IssueDescription: issue,
		EvidenceProvided: raw.EvidenceProvided,
		ProofOfPurchase:  proof,

		ShippingAddress: raw.ShippingAddress,

		MissingFields:        missing,
		ExtractionConfidence: confidence,
	}
}

// proofFromAttachments treats invoice-looking image or PDF attachments as
// proof of purchase.
func proofFromAttachments(attachments []string) bool {
	for _, a := range attachments {
		name := strings.ToLower(a)
		hasExt := strings.HasSuffix(name, ".pdf") || strings.HasSuffix(name, ".png") ||
			strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg")
		if !hasExt {
			continue
		}
		if strings.Contains(name, "invoice") || strings.Contains(name, "receipt") || strings.Contains(name, "order") {
			return true
		}
	}
	return false
}

// normalizeProduct maps a raw mention to a known product name, first by
// substring in either direction, then by alphanumeric-only containment.
func (e *Extractor) normalizeProduct(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	rawLower := strings.ToLower(raw)

	for _, product := range e.cfg.KnownProducts {
		productLower := strings.ToLower(product)
		if strings.Contains(rawLower, productLower) || strings.Contains(productLower, rawLower) {
			return product
		}
	}

	rawClean := stripNonAlnum(rawLower)
	if rawClean == "" {
		return ""
	}
	for _, product := range e.cfg.KnownProducts {
		if strings.Contains(stripNonAlnum(strings.ToLower(product)), rawClean) {
			return product
		}
	}
	return ""
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
