package models

// UniversityModality is one admission modality offered by a Beca 18 university.
type UniversityModality struct {
	Name                   string `json:"name"`
	MinimumGrade           string `json:"minimum_grade"`
	AdditionalRequirements string `json:"additional_requirements,omitempty"`
	Description            string `json:"description,omitempty"`
}

// University18Record is a university eligible for Beca 18.
type University18Record struct {
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Quintile   string               `json:"quintile"`
	Location   string               `json:"location"`
	Status     string               `json:"status"`
	CallYear   string               `json:"call_year"`
	Eligible   bool                 `json:"eligible"`
	Source     string               `json:"source"`
	SourceURL  string               `json:"source_url"`
	Modalities []UniversityModality `json:"modalities"`
}

func (u University18Record) Field(name string) string {
	switch name {
	case "name":
		return u.Name
	case "type":
		return u.Type
	case "quintile":
		return u.Quintile
	case "location":
		return u.Location
	case "status":
		return u.Status
	case "call_year":
		return u.CallYear
	case "eligible":
		if u.Eligible {
			return "Sí"
		}
		return "No"
	case "source":
		return u.Source
	case "source_url":
		return u.SourceURL
	}
	return ""
}

// UniversityFields lists the names University18Record.Field understands.
var UniversityFields = []string{
	"name", "type", "quintile", "location", "status", "call_year", "eligible", "source", "source_url",
}

// ModalityMinimum is the minimum average required by a Beca 18 modality.
type ModalityMinimum struct {
	Modality               string `json:"modality"`
	Description            string `json:"description"`
	MinimumAverage         string `json:"minimum_average"`
	AdditionalRequirements string `json:"additional_requirements,omitempty"`
}

// Beca18Document is the parsed scholarship-18 dataset.
type Beca18Document struct {
	ExtractedAt       string               `json:"extracted_at"`
	TotalUniversities string               `json:"total_universities"`
	TotalModalities   string               `json:"total_modalities"`
	Universities      []University18Record `json:"universities"`
	// Minimums is ordered by modality name; nil when the source omits the mapping.
	Minimums []ModalityMinimum `json:"minimums"`
}
