package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy maps free-form category labels from the classification service
// onto a fixed set of canonical categories.
type Taxonomy struct {
	Fallback   string             `yaml:"fallback"`
	Categories []TaxonomyCategory `yaml:"categories"`

	aliases map[string]string
}

type TaxonomyCategory struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

const defaultTaxonomyYAML = `
fallback: other
categories:
  - name: invoice
    aliases: [bill, receipt, payment]
  - name: contract
    aliases: [agreement, nda, lease]
  - name: report
    aliases: [analysis, summary, review]
  - name: letter
    aliases: [correspondence, memo, email]
  - name: id
    aliases: [passport, license, identity]
  - name: other
    aliases: [misc, unknown]
`

func DefaultTaxonomy() *Taxonomy {
	taxonomy, err := ParseTaxonomy([]byte(defaultTaxonomyYAML))
	if err != nil {
		panic(fmt.Sprintf("default taxonomy is invalid: %v", err))
	}
	return taxonomy
}

func LoadTaxonomy(path string) (*Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return ParseTaxonomy(raw)
}

func ParseTaxonomy(raw []byte) (*Taxonomy, error) {
	var taxonomy Taxonomy
	if err := yaml.Unmarshal(raw, &taxonomy); err != nil {
		return nil, fmt.Errorf("parse taxonomy yaml: %w", err)
	}
	if len(taxonomy.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}
	if taxonomy.Fallback == "" {
		taxonomy.Fallback = "other"
	}

	taxonomy.aliases = make(map[string]string)
	for _, category := range taxonomy.Categories {
		name := strings.ToLower(strings.TrimSpace(category.Name))
		if name == "" {
			return nil, fmt.Errorf("taxonomy category has empty name")
		}
		taxonomy.aliases[name] = name
		for _, alias := range category.Aliases {
			taxonomy.aliases[strings.ToLower(strings.TrimSpace(alias))] = name
		}
	}
	return &taxonomy, nil
}

// Normalize resolves a label to its canonical category, falling back when the
// label is unknown or empty.
func (t *Taxonomy) Normalize(label string) string {
	if canonical, ok := t.aliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return canonical
	}
	return t.Fallback
}
