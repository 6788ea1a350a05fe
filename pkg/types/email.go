package types

import "time"

// Email is one inbound message from the claims inbox. Decoding ignores
// unknown fields so inbox records can grow without breaking older readers.
type Email struct {
	EmailID      string     `json:"email_id"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	CustomerName string     `json:"customer_name,omitempty"`
	CustomerMail string     `json:"customer_email,omitempty"`
	Attachments  []string   `json:"attachments,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
}
