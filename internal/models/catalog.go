package models

import "sort"

// Schedule holds the five milestone dates of a scholarship call.
type Schedule struct {
	Application         string `json:"application"`
	Correction          string `json:"correction"`
	SelectedPublication string `json:"selected_publication"`
	Acceptance          string `json:"acceptance"`
	ScholarsPublication string `json:"scholars_publication"`
}

// ScholarshipCatalogEntry is one scholarship program of the integral catalog.
type ScholarshipCatalogEntry struct {
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Institution        string    `json:"institution"`
	Category           string    `json:"category"`
	StudyType          string    `json:"study_type"`
	Modality           string    `json:"modality"`
	Coverage           string    `json:"coverage"`
	OfficialURL        string    `json:"official_url"`
	Status             string    `json:"status"`
	ScholarshipCount   string    `json:"scholarship_count,omitempty"`
	SpecificModalities []string  `json:"specific_modalities,omitempty"`
	AgeLimit           string    `json:"age_limit,omitempty"`
	Funding            string    `json:"funding,omitempty"`
	Schedule           *Schedule `json:"schedule,omitempty"`
}

func (e ScholarshipCatalogEntry) Field(name string) string {
	switch name {
	case "code":
		return e.Code
	case "name":
		return e.Name
	case "institution":
		return e.Institution
	case "category":
		return e.Category
	case "study_type":
		return e.StudyType
	case "modality":
		return e.Modality
	case "coverage":
		return e.Coverage
	case "official_url":
		return e.OfficialURL
	case "status":
		return e.Status
	case "scholarship_count":
		return e.ScholarshipCount
	case "age_limit":
		return e.AgeLimit
	case "funding":
		return e.Funding
	}
	return ""
}

// CatalogFields lists the names ScholarshipCatalogEntry.Field understands.
var CatalogFields = []string{
	"code", "name", "institution", "category", "study_type", "modality", "coverage",
	"official_url", "status", "scholarship_count", "age_limit", "funding",
}

// IntegralDocument is the parsed integral-scholarships dataset.
type IntegralDocument struct {
	ExtractedAt string                             `json:"extracted_at"`
	Categories  []string                           `json:"categories"`
	Entries     map[string]ScholarshipCatalogEntry `json:"entries"`
}

// Entry returns the catalog entry for code.
func (d *IntegralDocument) Entry(code string) (ScholarshipCatalogEntry, bool) {
	if d == nil {
		return ScholarshipCatalogEntry{}, false
	}
	e, ok := d.Entries[code]
	return e, ok
}

// Catalog flattens the entries mapping into a slice ordered by code.
func (d *IntegralDocument) Catalog() []ScholarshipCatalogEntry {
	if d == nil || len(d.Entries) == 0 {
		return []ScholarshipCatalogEntry{}
	}
	codes := make([]string, 0, len(d.Entries))
	for code := range d.Entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]ScholarshipCatalogEntry, 0, len(codes))
	for _, code := range codes {
		e := d.Entries[code]
		e.Code = code
		out = append(out, e)
	}
	return out
}
