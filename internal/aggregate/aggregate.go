// Package aggregate derives per-scholarship statistics from institution records.
package aggregate

import "github.com/david/becas-dashboard/internal/models"

// Aggregate computes the metrics of code over records. Codes match exactly.
// Empty institution, program and region values are not counted as distinct
// values; whitespace is a value. An empty generationDate is replaced by models.Missing.
func Aggregate(records []models.InstitutionRecord, code, generationDate string) models.DerivedMetrics {
	institutions := make(map[string]struct{})
	programs := make(map[string]struct{})
	regions := make(map[string]struct{})

	m := models.DerivedMetrics{
		Code:           code,
		GenerationDate: models.Display(generationDate),
	}
	for _, r := range records {
		if r.ScholarshipCode != code {
			continue
		}
		m.TotalRecords++
		addNonEmpty(institutions, r.InstitutionName)
		addNonEmpty(programs, r.Program)
		addNonEmpty(regions, r.Region)
	}

	m.UniqueInstitutions = len(institutions)
	m.UniquePrograms = len(programs)
	m.UniqueRegions = len(regions)
	return m
}

// Scope returns the records belonging to code, preserving order.
func Scope(records []models.InstitutionRecord, code string) []models.InstitutionRecord {
	out := make([]models.InstitutionRecord, 0)
	for _, r := range records {
		if r.ScholarshipCode == code {
			out = append(out, r)
		}
	}
	return out
}

// Codes lists the distinct non-empty scholarship codes in order of first appearance.
func Codes(records []models.InstitutionRecord) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, r := range records {
		if r.ScholarshipCode == "" {
			continue
		}
		if _, ok := seen[r.ScholarshipCode]; ok {
			continue
		}
		seen[r.ScholarshipCode] = struct{}{}
		codes = append(codes, r.ScholarshipCode)
	}
	return codes
}

// ByCode aggregates every code returned by Codes.
func ByCode(records []models.InstitutionRecord, generationDate string) []models.DerivedMetrics {
	codes := Codes(records)
	out := make([]models.DerivedMetrics, 0, len(codes))
	for _, code := range codes {
		out = append(out, Aggregate(records, code, generationDate))
	}
	return out
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v == "" {
		return
	}
	set[v] = struct{}{}
}
