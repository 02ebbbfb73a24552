package models

// Missing is the placeholder rendered wherever a projected value is absent.
const Missing = "—"

// Record is implemented by every row type a view can filter or tabulate.
// Unknown field names resolve to the empty string.
type Record interface {
	Field(name string) string
}

// DerivedMetrics summarises the institutions dataset for a single scholarship code.
type DerivedMetrics struct {
	Code               string `json:"code"`
	TotalRecords       int    `json:"total_records"`
	UniqueInstitutions int    `json:"unique_institutions"`
	UniquePrograms     int    `json:"unique_programs"`
	UniqueRegions      int    `json:"unique_regions"`
	GenerationDate     string `json:"generation_date"`
}

// Display returns v, or Missing when v is empty. Whitespace is shown as is.
func Display(v string) string {
	if v == "" {
		return Missing
	}
	return v
}
