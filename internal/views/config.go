package views

import (
	"embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/david/becas-dashboard/internal/models"
)

//go:embed config/views.yaml
var viewsYAML embed.FS

// Dataset names accepted in view configuration.
const (
	DatasetBeca18       = "beca18"
	DatasetInstitutions = "institutions"
	DatasetIntegral     = "integral"
)

// View kinds.
const (
	KindRecords = "records"
	KindGlobal  = "global"
)

// Registry is the parsed views.yaml.
type Registry struct {
	Views []ViewConfig `yaml:"views"`
}

// ViewConfig declares how one view is projected.
type ViewConfig struct {
	Name          string      `yaml:"name" json:"name"`
	Title         string      `yaml:"title" json:"title"`
	Kind          string      `yaml:"kind,omitempty" json:"kind"`
	Dataset       string      `yaml:"dataset" json:"dataset"`
	Code          string      `yaml:"code,omitempty" json:"code,omitempty"` // empty = all codes
	CategoryField string      `yaml:"category_field,omitempty" json:"category_field,omitempty"`
	SearchFields  []string    `yaml:"search_fields,omitempty" json:"search_fields,omitempty"`
	Columns       []string    `yaml:"columns" json:"columns"`
	Metrics       bool        `yaml:"metrics,omitempty" json:"metrics"`
	Minimums      bool        `yaml:"minimums,omitempty" json:"-"`
	Info          *InfoConfig `yaml:"info,omitempty" json:"-"`
}

// InfoConfig attaches the descriptive block of a catalog entry to a view.
type InfoConfig struct {
	Code         string   `yaml:"code"`
	Title        string   `yaml:"title"`
	WhenCategory string   `yaml:"when_category,omitempty"` // only when the category constraint equals this
	Fields       []string `yaml:"fields"`
	Schedule     bool     `yaml:"schedule,omitempty"`
}

// LoadViews reads view configuration from path, falling back to the embedded
// views.yaml when path is empty or missing.
func LoadViews(path string) (*Registry, error) {
	var data []byte
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		}
	}
	if data == nil {
		b, err := viewsYAML.ReadFile("config/views.yaml")
		if err != nil {
			return nil, err
		}
		data = b
	}

	var reg Registry
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &reg); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	for i := range reg.Views {
		if reg.Views[i].Kind == "" {
			reg.Views[i].Kind = KindRecords
		}
	}
	return &reg, nil
}

// Validate checks every view against the fields its dataset exposes.
func (r *Registry) Validate() error {
	if len(r.Views) == 0 {
		return fmt.Errorf("no views configured")
	}
	seen := make(map[string]bool)
	for _, v := range r.Views {
		if v.Name == "" {
			return fmt.Errorf("view with empty name")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		if err := v.validate(); err != nil {
			return fmt.Errorf("view %q: %w", v.Name, err)
		}
	}
	return nil
}

func (v ViewConfig) validate() error {
	known := v.fields()
	if known == nil {
		return fmt.Errorf("unknown dataset %q", v.Dataset)
	}

	switch v.Kind {
	case KindRecords, "":
	case KindGlobal:
		if v.Dataset != DatasetInstitutions {
			return fmt.Errorf("global views read the %s dataset", DatasetInstitutions)
		}
		if v.CategoryField != "" || len(v.SearchFields) > 0 {
			return fmt.Errorf("global views take no filters")
		}
	default:
		return fmt.Errorf("unknown kind %q", v.Kind)
	}

	if v.CategoryField != "" && !slices.Contains(known, v.CategoryField) {
		return fmt.Errorf("unknown category field %q", v.CategoryField)
	}
	for _, f := range v.SearchFields {
		if !slices.Contains(known, f) {
			return fmt.Errorf("unknown search field %q", f)
		}
	}
	if len(v.Columns) == 0 {
		return fmt.Errorf("no columns")
	}
	for _, f := range v.Columns {
		if !slices.Contains(known, f) {
			return fmt.Errorf("unknown column %q", f)
		}
	}

	if v.Code != "" && (v.Dataset != DatasetInstitutions || v.Kind == KindGlobal) {
		return fmt.Errorf("code scope only applies to institutions record views")
	}
	if v.Metrics && v.Code == "" {
		return fmt.Errorf("metrics require a code scope")
	}
	if v.Minimums && v.Dataset != DatasetBeca18 {
		return fmt.Errorf("minimums only apply to the %s dataset", DatasetBeca18)
	}
	if v.Info != nil {
		if v.Info.Code == "" {
			return fmt.Errorf("info block without code")
		}
		for _, f := range v.Info.Fields {
			if _, ok := infoLabels[f]; !ok {
				return fmt.Errorf("unknown info field %q", f)
			}
		}
	}
	return nil
}

func (v ViewConfig) fields() []string {
	if v.Kind == KindGlobal {
		return GlobalFields
	}
	switch v.Dataset {
	case DatasetBeca18:
		return models.UniversityFields
	case DatasetInstitutions:
		return models.InstitutionFields
	case DatasetIntegral:
		return models.CatalogFields
	}
	return nil
}
