package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/david/becas-dashboard/internal/models"
)

func tecRecords() []models.InstitutionRecord {
	return []models.InstitutionRecord{
		{ScholarshipCode: "beca_tec", InstitutionName: "EEST Privada ADEX", Program: "Marketing", Region: "Lima"},
		{ScholarshipCode: "beca_tec", InstitutionName: "IES Privado Khipu", Program: "Computación", Region: "Cusco"},
		{ScholarshipCode: "beca_tec", InstitutionName: "IES Privado Cumbre", Program: "Gastronomía", Region: "Lambayeque"},
		{ScholarshipCode: "beca_tec", InstitutionName: "IES Privado Khipu", Program: "Contabilidad", Region: "Cusco"},
		{ScholarshipCode: "beca_tec", InstitutionName: "", Program: "", Region: ""},
		{ScholarshipCode: "beca_18", InstitutionName: "Universidad Nacional de Barranca", Program: "Modalidad Ordinaria", Region: "Lima"},
		{ScholarshipCode: "BECA_TEC", InstitutionName: "Otro", Program: "Otro", Region: "Otro"},
	}
}

func TestAggregate_CountsDistinctNonEmptyValues(t *testing.T) {
	got := Aggregate(tecRecords(), "beca_tec", "2025-09-01 10:00:00")

	want := models.DerivedMetrics{
		Code:               "beca_tec",
		TotalRecords:       5,
		UniqueInstitutions: 3,
		UniquePrograms:     4,
		UniqueRegions:      3,
		GenerationDate:     "2025-09-01 10:00:00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_CodeMatchIsCaseSensitive(t *testing.T) {
	got := Aggregate(tecRecords(), "BECA_TEC", "")
	assert.Equal(t, 1, got.TotalRecords)
}

func TestAggregate_MissingDateUsesSentinel(t *testing.T) {
	got := Aggregate(tecRecords(), "beca_tec", "")
	assert.Equal(t, models.Missing, got.GenerationDate)
}

func TestAggregate_UnknownCodeIsZero(t *testing.T) {
	got := Aggregate(tecRecords(), "beca_peru", "2025")
	assert.Equal(t, models.DerivedMetrics{Code: "beca_peru", GenerationDate: "2025"}, got)

	got = Aggregate(nil, "beca_peru", "2025")
	assert.Zero(t, got.TotalRecords)
}

func TestAggregate_IsPureAndIdempotent(t *testing.T) {
	records := tecRecords()
	snapshot := append([]models.InstitutionRecord(nil), records...)

	first := Aggregate(records, "beca_tec", "2025")
	second := Aggregate(records, "beca_tec", "2025")

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, records, "input must not be modified")
}

func TestAggregate_WhitespaceIsAValue(t *testing.T) {
	records := []models.InstitutionRecord{
		{ScholarshipCode: "c", InstitutionName: "A", Program: "P", Region: "Lima"},
		{ScholarshipCode: "c", InstitutionName: " ", Program: "\t", Region: " "},
		{ScholarshipCode: "c", InstitutionName: "", Program: "", Region: ""},
	}
	got := Aggregate(records, "c", " ")

	want := models.DerivedMetrics{
		Code:               "c",
		TotalRecords:       3,
		UniqueInstitutions: 2,
		UniquePrograms:     2,
		UniqueRegions:      2,
		GenerationDate:     " ",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestCodes_WhitespaceCodeIsListed(t *testing.T) {
	records := []models.InstitutionRecord{
		{ScholarshipCode: "beca_tec"},
		{ScholarshipCode: " "},
		{ScholarshipCode: ""},
	}
	assert.Equal(t, []string{"beca_tec", " "}, Codes(records))
}

func TestCodes_FirstAppearanceOrder(t *testing.T) {
	records := append(tecRecords(), models.InstitutionRecord{ScholarshipCode: ""})
	assert.Equal(t, []string{"beca_tec", "beca_18", "BECA_TEC"}, Codes(records))
}

func TestByCode(t *testing.T) {
	got := ByCode(tecRecords(), "2025")

	if assert.Len(t, got, 3) {
		assert.Equal(t, "beca_tec", got[0].Code)
		assert.Equal(t, 5, got[0].TotalRecords)
		assert.Equal(t, "beca_18", got[1].Code)
		assert.Equal(t, 1, got[1].UniqueInstitutions)
	}
}

func TestScope(t *testing.T) {
	got := Scope(tecRecords(), "beca_18")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "Universidad Nacional de Barranca", got[0].InstitutionName)
	}
	assert.NotNil(t, Scope(nil, "beca_18"))
}
