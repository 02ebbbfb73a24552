package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/becas-dashboard/internal/models"
)

var searchFields = []string{"institution_name", "region", "location", "program"}

func sampleInstitutions() []models.InstitutionRecord {
	return []models.InstitutionRecord{
		{ScholarshipCode: "beca_tec", InstitutionGroup: "Institutos Técnicos", InstitutionName: "EEST Privada ADEX", Region: "Lima", Location: "San Borja, Lima", Program: "Administración de Negocios Internacionales"},
		{ScholarshipCode: "beca_tec", InstitutionGroup: "Institutos Técnicos", InstitutionName: "EEST Privada Corriente Alterna", Region: "La Victoria, Lima", Location: "", Program: "Diseño Gráfico"},
		{ScholarshipCode: "beca_tec", InstitutionGroup: "Institutos Técnicos", InstitutionName: "IES Privado Khipu", Region: "Cusco", Location: "Cusco y San Sebastián", Program: "Computación e Informática"},
		{ScholarshipCode: "beca_18", InstitutionGroup: "Universidades", InstitutionName: "Universidad Nacional de Barranca", Region: "", Location: "Barranca", Program: "Modalidad Ordinaria"},
		{ScholarshipCode: "beca_peru", InstitutionGroup: "universidades", InstitutionName: "", Region: "Arequipa", Location: "Arequipa", Program: "Derecho"},
	}
}

func TestRecords_NoConstraintsIsIdentity(t *testing.T) {
	records := sampleInstitutions()

	for _, term := range []string{"", "   ", "\t\n"} {
		got := Records(records, term, "", "institution_group", searchFields)
		assert.Equal(t, records, got, "term %q", term)
	}
}

func TestRecords_EmptyInputReturnsEmptySlice(t *testing.T) {
	got := Records([]models.InstitutionRecord(nil), "lima", "x", "region", searchFields)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecords_TermMatchesAnySearchFieldIgnoringCase(t *testing.T) {
	records := sampleInstitutions()

	for _, term := range []string{"lima", "LIMA", " Lima ", "khipu", "derecho", "san"} {
		got := Records(records, term, "", "", searchFields)
		require.NotEmpty(t, got, "term %q", term)

		needle := strings.ToLower(strings.TrimSpace(term))
		for _, r := range got {
			hit := false
			for _, f := range searchFields {
				if strings.Contains(strings.ToLower(r.Field(f)), needle) {
					hit = true
				}
			}
			assert.True(t, hit, "record %q does not contain %q", r.InstitutionName, term)
		}

		// Every excluded record fails the predicate.
		kept := make(map[string]bool)
		for _, r := range got {
			kept[r.InstitutionName+r.Program] = true
		}
		for _, r := range records {
			if kept[r.InstitutionName+r.Program] {
				continue
			}
			for _, f := range searchFields {
				assert.NotContains(t, strings.ToLower(r.Field(f)), needle)
			}
		}
	}
}

func TestRecords_LimaOnlyInRegion(t *testing.T) {
	records := []models.InstitutionRecord{
		{InstitutionName: "Instituto A", Region: "Cusco", Location: "Cusco", Program: "Enfermería"},
		{InstitutionName: "Instituto B", Region: "La Victoria, Lima", Location: "Centro", Program: "Contabilidad"},
		{InstitutionName: "Instituto C", Region: "Piura", Location: "Piura", Program: "Mecánica"},
		{InstitutionName: "Instituto D", Region: "La Victoria, Lima", Location: "Centro", Program: "Diseño"},
	}

	got := Records(records, "lima", "", "", searchFields)

	require.Len(t, got, 2)
	assert.Equal(t, "Instituto B", got[0].InstitutionName)
	assert.Equal(t, "Instituto D", got[1].InstitutionName)
}

func TestRecords_CategoryIsCaseInsensitiveExactMatch(t *testing.T) {
	catalog := []models.ScholarshipCatalogEntry{
		{Code: "beca_18", Name: "Beca 18", Category: "Pregrado"},
		{Code: "beca_generacion_bicentenario", Name: "Beca Generación Bicentenario", Category: "Posgrado"},
		{Code: "credito_educativo", Name: "Crédito Educativo", Category: "Financiamiento"},
		{Code: "beca_pos", Name: "Posgrado parcial", Category: "Posgrado Parcial"},
	}

	got := Records(catalog, "", "posgrado", "category", []string{"name"})

	require.Len(t, got, 1)
	assert.Equal(t, "beca_generacion_bicentenario", got[0].Code)
}

func TestRecords_CategoryWithNoMatchIsEmptyNotError(t *testing.T) {
	got := Records(sampleInstitutions(), "", "Colegios", "institution_group", searchFields)
	assert.Empty(t, got)
}

func TestRecords_WhitespaceCategoryIsAConstraint(t *testing.T) {
	records := sampleInstitutions()
	records = append(records, models.InstitutionRecord{ScholarshipCode: "beca_tec", InstitutionGroup: " "})

	got := Records(records, "", " ", "institution_group", nil)
	require.Len(t, got, 1)
	assert.Equal(t, " ", got[0].InstitutionGroup)

	assert.Empty(t, Records(sampleInstitutions(), "", " ", "institution_group", nil))
}

func TestRecords_CategoryNeverGrowsResult(t *testing.T) {
	records := sampleInstitutions()
	categories := []string{"Institutos Técnicos", "universidades", "UNIVERSIDADES", "nada"}
	terms := []string{"", "lima", "a", "zzz"}

	for _, term := range terms {
		base := Records(records, term, "", "institution_group", searchFields)
		for _, cat := range categories {
			narrowed := Records(records, term, cat, "institution_group", searchFields)
			assert.LessOrEqual(t, len(narrowed), len(base), "term=%q category=%q", term, cat)
			for _, r := range narrowed {
				assert.Contains(t, base, r)
			}
		}
	}
}

func TestRecords_ConstraintsCommute(t *testing.T) {
	records := sampleInstitutions()

	both := Records(records, "lima", "institutos técnicos", "institution_group", searchFields)
	categoryFirst := Records(Records(records, "", "institutos técnicos", "institution_group", searchFields), "lima", "", "institution_group", searchFields)
	termFirst := Records(Records(records, "lima", "", "institution_group", searchFields), "", "institutos técnicos", "institution_group", searchFields)

	assert.Equal(t, both, categoryFirst)
	assert.Equal(t, both, termFirst)
	assert.Len(t, both, 2)
}

func TestRecords_UnknownFieldsBehaveAsEmpty(t *testing.T) {
	records := sampleInstitutions()

	assert.Empty(t, Records(records, "lima", "", "", []string{"does_not_exist"}))
	assert.Empty(t, Records(records, "", "x", "does_not_exist", searchFields))
}

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"lima", "lima"},
		{"LIMA", "lima"},
		{"Técnico", "técnico"},
		{"ÉXITO", "Éxito"},
	}
	for _, tt := range tests {
		if got := foldASCII(tt.in); got != tt.want {
			t.Errorf("foldASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
