package types

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ClaimExtract holds the structured facts derived from one email.
// Every identity and purchase field is optional; only the issue text is
// required. MissingFields and ExtractionConfidence are recomputed by the
// extractor after any model-assisted fill, never trusted from the model.
type ClaimExtract struct {
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	ProductName      string `json:"product_name,omitempty"`
	ProductModelHint string `json:"product_model_hint,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`

	PurchaseDate *Date  `json:"purchase_date,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	Retailer     string `json:"retailer,omitempty"`

	IssueDescription string   `json:"issue_description"`
	EvidenceProvided []string `json:"evidence_provided,omitempty"`
	ProofOfPurchase  bool     `json:"proof_of_purchase_present"`

	ShippingAddress string `json:"shipping_address,omitempty"`

	MissingFields        []string   `json:"missing_fields,omitempty"`
	ExtractionConfidence Confidence `json:"extraction_confidence"`
}
