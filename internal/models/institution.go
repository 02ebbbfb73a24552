package models

// InstitutionRecord is one (scholarship, institution, program) row of the
// combined institutions dataset.
type InstitutionRecord struct {
	ScholarshipCode  string `json:"scholarship_code"`
	ScholarshipName  string `json:"scholarship_name"`
	InstitutionGroup string `json:"institution_group"` // "Universidades", "Institutos Técnicos"
	InstitutionName  string `json:"institution_name"`
	InstitutionType  string `json:"institution_type"` // "Pública", "Privada"
	Region           string `json:"region"`
	Location         string `json:"location"`
	Program          string `json:"program"`
	ProgramModality  string `json:"program_modality"`
}

func (r InstitutionRecord) Field(name string) string {
	switch name {
	case "scholarship_code":
		return r.ScholarshipCode
	case "scholarship_name":
		return r.ScholarshipName
	case "institution_group":
		return r.InstitutionGroup
	case "institution_name":
		return r.InstitutionName
	case "institution_type":
		return r.InstitutionType
	case "region":
		return r.Region
	case "location":
		return r.Location
	case "program":
		return r.Program
	case "program_modality":
		return r.ProgramModality
	}
	return ""
}

// InstitutionFields lists the names InstitutionRecord.Field understands.
var InstitutionFields = []string{
	"scholarship_code", "scholarship_name", "institution_group", "institution_name",
	"institution_type", "region", "location", "program", "program_modality",
}

// ScholarshipSummary is the per-code summary as published by the dataset
// generator. Values are kept as text; they are informational only.
type ScholarshipSummary struct {
	Name               string `json:"name"`
	TotalRecords       string `json:"total_records"`
	UniqueInstitutions string `json:"unique_institutions"`
	UniqueRegions      string `json:"unique_regions"`
	UniquePrograms     string `json:"unique_programs"`
}

// InstitutionsDocument is the parsed combined institutions dataset.
type InstitutionsDocument struct {
	GenerationDate    string                        `json:"generation_date"`
	Description       string                        `json:"description"`
	Version           string                        `json:"version"`
	TotalRecords      string                        `json:"total_records"`
	TotalScholarships string                        `json:"total_scholarships"`
	Summaries         map[string]ScholarshipSummary `json:"summaries"`
	Records           []InstitutionRecord           `json:"records"`
}
