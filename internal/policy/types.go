package policy

// Document is one warranty policy for a specific product line.
type Document struct {
	PolicyID       string   `yaml:"policy_id" json:"policy_id"`
	ProductName    string   `yaml:"product_name" json:"product_name"`
	WarrantyMonths int      `yaml:"warranty_period_months" json:"warranty_period_months"`
	CoveredIssues  []string `yaml:"covered_issues" json:"covered_issues"`
	Exclusions     []string `yaml:"exclusions" json:"exclusions"`
	RequiredProof  []string `yaml:"required_proof" json:"required_proof"`
	Version        string   `yaml:"version" json:"version,omitempty"`

	SourcePath string `yaml:"-" json:"source_path,omitempty"`
}

// DefaultWarrantyMonths applies when a policy document omits the duration.
const DefaultWarrantyMonths = 3
