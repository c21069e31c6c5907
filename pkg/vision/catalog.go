package vision

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Field is one entry of the extraction schema: the JSON key the model must
// emit and a short description guiding what to read off the documents.
type Field struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type Catalog struct {
	Fields []Field `yaml:"fields" json:"fields"`
}

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Fields) == 0 {
		return Catalog{}, fmt.Errorf("field catalog empty")
	}
	return cat, nil
}

func DefaultCatalog() Catalog {
	return Catalog{Fields: []Field{
		{Name: "full_name", Description: "Person's full name"},
		{Name: "national_id", Description: "National ID card number"},
		{Name: "tax_id", Description: "Taxpayer ID number"},
		{Name: "issue_date", Description: "ID card issue date"},
		{Name: "issuing_authority", Description: "Authority that issued the ID card"},
		{Name: "issuing_state", Description: "State of the issuing authority"},
		{Name: "mother_name", Description: "Mother's name"},
		{Name: "father_name", Description: "Father's name (if visible)"},
		{Name: "birth_date", Description: "Date of birth"},
		{Name: "birth_place", Description: "Place of birth"},
		{Name: "birth_state", Description: "State of the place of birth"},
		{Name: "full_address", Description: "Full address from the proof of residence"},
		{Name: "neighborhood", Description: "Neighborhood"},
		{Name: "city", Description: "City"},
		{Name: "state", Description: "State"},
		{Name: "postal_code", Description: "Postal code"},
		{Name: "residence_proof_type", Description: "Type of the proof of residence (utility bill, water bill, etc.)"},
	}}
}
