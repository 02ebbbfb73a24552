package views

import (
	"strconv"

	"github.com/david/becas-dashboard/internal/models"
)

// FilterState is the user's current search text and category selection.
// Both empty means unfiltered.
type FilterState struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

// Table is the display form of a view's rows: configured columns only, with
// missing values replaced by models.Missing.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// InfoItem is one labelled value of an info block.
type InfoItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InfoBlock is the descriptive panel attached to some views.
type InfoBlock struct {
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Items    []InfoItem `json:"items"`
	Schedule []InfoItem `json:"schedule,omitempty"`
}

// ViewResult is the renderable output of one view.
type ViewResult struct {
	View    string      `json:"view"`
	Title   string      `json:"title"`
	Filter  FilterState `json:"filter"`
	Rows    any         `json:"rows"`
	Table   Table       `json:"table"`
	Total   int         `json:"total"` // rows before filtering
	IsEmpty bool        `json:"is_empty"`

	Metrics  *models.DerivedMetrics   `json:"metrics,omitempty"`
	Summary  any                      `json:"summary,omitempty"`
	Info     *InfoBlock               `json:"info,omitempty"`
	Minimums []models.ModalityMinimum `json:"minimums,omitempty"`

	// Error carries the last load failure; prior contents stay as they were.
	Error string `json:"error,omitempty"`
}

// Beca18Summary heads the Beca 18 view.
type Beca18Summary struct {
	ExtractedAt       string `json:"extracted_at"`
	TotalUniversities string `json:"total_universities"`
	TotalModalities   string `json:"total_modalities"`
}

// InstitutionsSummary heads the institutions-by-code view.
type InstitutionsSummary struct {
	GenerationDate    string `json:"generation_date"`
	TotalRecords      string `json:"total_records"`
	TotalScholarships string `json:"total_scholarships"`
}

// CatalogSummary heads the integral catalog view.
type CatalogSummary struct {
	ExtractedAt     string `json:"extracted_at"`
	TotalCategories int    `json:"total_categories"`
	TotalEntries    int    `json:"total_entries"`
}

// GlobalSummary holds the totals of the global statistics view.
type GlobalSummary struct {
	GenerationDate string `json:"generation_date"`
	TotalRecords   int    `json:"total_records"`
	TotalCodes     int    `json:"total_codes"`
}

// GlobalRow is one scholarship code of the global statistics view.
type GlobalRow struct {
	Name string `json:"name"`
	models.DerivedMetrics
}

func (g GlobalRow) Field(name string) string {
	switch name {
	case "code":
		return g.Code
	case "name":
		return g.Name
	case "total_records":
		return strconv.Itoa(g.TotalRecords)
	case "unique_institutions":
		return strconv.Itoa(g.UniqueInstitutions)
	case "unique_programs":
		return strconv.Itoa(g.UniquePrograms)
	case "unique_regions":
		return strconv.Itoa(g.UniqueRegions)
	case "generation_date":
		return g.GenerationDate
	}
	return ""
}

// GlobalFields lists the names GlobalRow.Field understands.
var GlobalFields = []string{
	"code", "name", "total_records", "unique_institutions", "unique_programs", "unique_regions", "generation_date",
}

func buildTable[T models.Record](columns []string, rows []T) Table {
	t := Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = models.Display(r.Field(c))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
