package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads every *.yaml policy document under dir into a Catalog.
// File order (sorted by name) defines catalog order, which later acts as
// the tie-break for policy selection. An empty or invalid catalog is a
// startup-fatal condition; errors always name the offending file.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read policy dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	catalog := &Catalog{byProduct: make(map[string]int)}
	for _, path := range paths {
		doc, err := loadDocument(path)
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(strings.TrimSpace(doc.ProductName))
		if _, dup := catalog.byProduct[key]; dup {
			return nil, fmt.Errorf("policy %s: duplicate product_name %q", path, doc.ProductName)
		}
		catalog.byProduct[key] = len(catalog.docs)
		catalog.docs = append(catalog.docs, doc)
	}

	if len(catalog.docs) == 0 {
		return nil, fmt.Errorf("no policy documents found in %s", dir)
	}
	return catalog, nil
}

func loadDocument(path string) (Document, error) {
	// #nosec G304 -- path comes from the operator-configured policy dir.
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read policy %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if doc.PolicyID == "" {
		doc.PolicyID = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".yml")
	}
	if strings.TrimSpace(doc.ProductName) == "" {
		return Document{}, fmt.Errorf("policy %s: product_name is required", path)
	}
	if doc.WarrantyMonths < 0 {
		return Document{}, fmt.Errorf("policy %s: warranty_period_months must not be negative", path)
	}
	if doc.WarrantyMonths == 0 {
		doc.WarrantyMonths = DefaultWarrantyMonths
	}
	doc.SourcePath = path
	return doc, nil
}
