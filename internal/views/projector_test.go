package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/models"
)

func newTestProjector(t *testing.T) *Projector {
	t.Helper()
	reg, err := LoadViews("")
	require.NoError(t, err)
	p, err := NewProjector(reg)
	require.NoError(t, err)
	return p
}

func inst(code, group, name, region, program string) models.InstitutionRecord {
	return models.InstitutionRecord{
		ScholarshipCode:  code,
		ScholarshipName:  "Beca " + code,
		InstitutionGroup: group,
		InstitutionName:  name,
		Region:           region,
		Location:         region,
		Program:          program,
	}
}

func fixtureSnapshot() *dataset.Snapshot {
	return &dataset.Snapshot{
		CycleID: "test",
		Beca18: &models.Beca18Document{
			ExtractedAt:       "2025-03-01",
			TotalUniversities: "2",
			Universities: []models.University18Record{
				{Name: "Universidad Nacional de Ingeniería", Type: "Pública", Location: "Lima", Status: "Licenciada"},
				{Name: " Universidad de Piura ", Type: "Privada", Location: "Piura"},
			},
			Minimums: []models.ModalityMinimum{
				{Modality: "ordinaria", Description: "Beca 18 Ordinaria", MinimumAverage: "14"},
				{Modality: "vraem"},
			},
		},
		Institutions: &models.InstitutionsDocument{
			GenerationDate:    "2025-04-10",
			TotalRecords:      "8",
			TotalScholarships: "2",
			Summaries: map[string]models.ScholarshipSummary{
				"beca_tec": {Name: "Beca Tec"},
			},
			Records: []models.InstitutionRecord{
				inst("beca_tec", "Institutos Técnicos", "SENATI", "Lima", "Mecatrónica"),
				inst("beca_tec", "Institutos Técnicos", "SENATI", "Arequipa", "Electrónica"),
				inst("beca_tec", "Institutos Técnicos", "TECSUP", "Lima", "Redes"),
				inst("beca_tec", "Universidades", "UTP", "Cusco", "Software"),
				inst("beca_tec", "Institutos Técnicos", "TECSUP", "Arequipa", "Redes"),
				inst("beca_peru", "Universidades", "PUCP", "Lima", "Derecho"),
				inst("beca_peru", "Universidades", "UNSA", "Arequipa", "Medicina"),
				inst("beca_peru", "Institutos Técnicos", "IDAT", "Lima", ""),
			},
		},
		Integral: &models.IntegralDocument{
			ExtractedAt: "2025-02-20",
			Categories:  []string{"pregrado", "posgrado"},
			Entries: map[string]models.ScholarshipCatalogEntry{
				"beca_tec": {
					Name: "Beca Tec", Category: "pregrado", StudyType: "Técnico",
					ScholarshipCount: "1000", SpecificModalities: []string{"Ordinaria", "Huallaga"},
				},
				"beca_peru": {
					Name: "Beca Perú", Category: "pregrado", AgeLimit: "30",
					Schedule: &models.Schedule{Application: "01/06 - 30/06"},
				},
				"beca_generacion_bicentenario": {
					Name: "Generación del Bicentenario", Category: "Posgrado", Institution: "PRONABEC", Modality: "Maestría",
				},
			},
		},
	}
}

func TestLoadViewsEmbedded(t *testing.T) {
	reg, err := LoadViews("")
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	var names []string
	for _, v := range reg.Views {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"beca18", "beca_tec", "beca_peru", "instituciones", "becas", "estadisticas"}, names)
}

func TestRegistryValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		view ViewConfig
	}{
		{"unknown dataset", ViewConfig{Name: "x", Kind: KindRecords, Dataset: "nope", Columns: []string{"name"}}},
		{"unknown column", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetIntegral, Columns: []string{"region"}}},
		{"unknown search field", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetBeca18, Columns: []string{"name"}, SearchFields: []string{"program"}}},
		{"metrics without code", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetInstitutions, Columns: []string{"region"}, Metrics: true}},
		{"code on catalog", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetIntegral, Code: "beca_tec", Columns: []string{"name"}}},
		{"global with filters", ViewConfig{Name: "x", Kind: KindGlobal, Dataset: DatasetInstitutions, Columns: []string{"name"}, CategoryField: "code"}},
		{"unknown kind", ViewConfig{Name: "x", Kind: "pie", Dataset: DatasetIntegral, Columns: []string{"name"}}},
		{"no columns", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetIntegral}},
		{"bad info field", ViewConfig{Name: "x", Kind: KindRecords, Dataset: DatasetIntegral, Columns: []string{"name"}, Info: &InfoConfig{Code: "beca_tec", Fields: []string{"quintile"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registry{Views: []ViewConfig{tt.view}}
			if err := reg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	dup := &Registry{Views: []ViewConfig{
		{Name: "a", Kind: KindRecords, Dataset: DatasetIntegral, Columns: []string{"name"}},
		{Name: "a", Kind: KindRecords, Dataset: DatasetIntegral, Columns: []string{"name"}},
	}}
	assert.Error(t, dup.Validate())
}

func TestProjectUnknownView(t *testing.T) {
	p := newTestProjector(t)
	_, err := p.Project(fixtureSnapshot(), "nope", FilterState{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func TestProjectEmptySnapshot(t *testing.T) {
	p := newTestProjector(t)
	results := p.ProjectAll(&dataset.Snapshot{})
	require.Len(t, results, 6)
	for _, res := range results {
		assert.True(t, res.IsEmpty, res.View)
		assert.Equal(t, 0, res.Total, res.View)
		assert.NotNil(t, res.Table.Rows, res.View)
		assert.Nil(t, res.Info, res.View)
	}

	res, err := p.Project(nil, "beca_tec", FilterState{})
	require.NoError(t, err)
	require.NotNil(t, res.Metrics)
	assert.Equal(t, models.DerivedMetrics{Code: "beca_tec", GenerationDate: models.Missing}, *res.Metrics)
}

func TestBecaTecMetricsIgnoreFilter(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()

	res, err := p.Project(snap, "beca_tec", FilterState{})
	require.NoError(t, err)
	require.NotNil(t, res.Metrics)
	assert.Equal(t, 5, res.Metrics.TotalRecords)
	assert.Equal(t, 3, res.Metrics.UniqueInstitutions)
	assert.Equal(t, "2025-04-10", res.Metrics.GenerationDate)
	assert.Len(t, res.Rows, 5)

	filtered, err := p.Project(snap, "beca_tec", FilterState{Search: "lima"})
	require.NoError(t, err)
	rows := filtered.Rows.([]models.InstitutionRecord)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Lima", r.Region)
	}
	assert.Equal(t, res.Metrics, filtered.Metrics)
	assert.Equal(t, 5, filtered.Total)

	grouped, err := p.Project(snap, "beca_tec", FilterState{Category: "universidades"})
	require.NoError(t, err)
	assert.Len(t, grouped.Rows, 1)
}

func TestTableAppliesSentinel(t *testing.T) {
	p := newTestProjector(t)
	res, err := p.Project(fixtureSnapshot(), "beca_peru", FilterState{Search: "idat"})
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 1)

	row := res.Table.Rows[0]
	assert.Equal(t, "IDAT", row[0])
	assert.Equal(t, models.Missing, row[3]) // program
	assert.Equal(t, models.Missing, row[4]) // program modality
}

func TestCatalogCategoryIgnoresCase(t *testing.T) {
	p := newTestProjector(t)
	res, err := p.Project(fixtureSnapshot(), "becas", FilterState{Category: "posgrado"})
	require.NoError(t, err)

	rows := res.Rows.([]models.ScholarshipCatalogEntry)
	require.Len(t, rows, 1)
	assert.Equal(t, "beca_generacion_bicentenario", rows[0].Code)
	assert.Equal(t, 3, res.Total)

	none, err := p.Project(fixtureSnapshot(), "becas", FilterState{Category: "doctorado"})
	require.NoError(t, err)
	assert.True(t, none.IsEmpty)
}

func TestCatalogSortedByCode(t *testing.T) {
	p := newTestProjector(t)
	res, err := p.Project(fixtureSnapshot(), "becas", FilterState{})
	require.NoError(t, err)

	var codes []string
	for _, r := range res.Rows.([]models.ScholarshipCatalogEntry) {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{"beca_generacion_bicentenario", "beca_peru", "beca_tec"}, codes)
	assert.Equal(t, CatalogSummary{ExtractedAt: "2025-02-20", TotalCategories: 2, TotalEntries: 3}, res.Summary)
}

func TestEmptyCatalogAndInstitutions(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()
	snap.Integral = &models.IntegralDocument{Entries: map[string]models.ScholarshipCatalogEntry{}}
	snap.Institutions = &models.InstitutionsDocument{}

	res, err := p.Project(snap, "becas", FilterState{})
	require.NoError(t, err)
	assert.True(t, res.IsEmpty)
	assert.Equal(t, CatalogSummary{ExtractedAt: models.Missing}, res.Summary)

	global, err := p.Project(snap, "estadisticas", FilterState{})
	require.NoError(t, err)
	assert.True(t, global.IsEmpty)
	assert.Equal(t, GlobalSummary{GenerationDate: models.Missing}, global.Summary)
}

func TestInfoBlocks(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()

	tec, err := p.Project(snap, "beca_tec", FilterState{})
	require.NoError(t, err)
	require.NotNil(t, tec.Info)
	assert.Equal(t, []InfoItem{
		{Label: "Cantidad de becas", Value: "1000"},
		{Label: "Modalidades", Value: "Ordinaria, Huallaga"},
		{Label: "Tipo de estudio", Value: "Técnico"},
		{Label: "Cobertura", Value: models.Missing},
		{Label: "Estado", Value: models.Missing},
		{Label: "URL oficial", Value: models.Missing},
	}, tec.Info.Items)
	assert.Empty(t, tec.Info.Schedule)

	peru, err := p.Project(snap, "beca_peru", FilterState{})
	require.NoError(t, err)
	require.NotNil(t, peru.Info)
	require.Len(t, peru.Info.Schedule, 5)
	assert.Equal(t, "01/06 - 30/06", peru.Info.Schedule[0].Value)
	assert.Equal(t, models.Missing, peru.Info.Schedule[4].Value)
}

func TestInfoBlockOmittedWhenEntryMissing(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()
	delete(snap.Integral.Entries, "beca_tec")

	res, err := p.Project(snap, "beca_tec", FilterState{})
	require.NoError(t, err)
	assert.Nil(t, res.Info)
	assert.Len(t, res.Rows, 5)
}

func TestInstitutionsInfoFollowsCategory(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()

	all, err := p.Project(snap, "instituciones", FilterState{})
	require.NoError(t, err)
	assert.Nil(t, all.Info)
	assert.Len(t, all.Rows, 8)
	assert.Equal(t, InstitutionsSummary{GenerationDate: "2025-04-10", TotalRecords: "8", TotalScholarships: "2"}, all.Summary)

	peru, err := p.Project(snap, "instituciones", FilterState{Category: "beca_peru"})
	require.NoError(t, err)
	require.NotNil(t, peru.Info)
	assert.Equal(t, "beca_peru", peru.Info.Code)
	assert.Len(t, peru.Rows, 3)

	tec, err := p.Project(snap, "instituciones", FilterState{Category: "beca_tec"})
	require.NoError(t, err)
	assert.Nil(t, tec.Info)

	padded, err := p.Project(snap, "instituciones", FilterState{Category: " beca_peru "})
	require.NoError(t, err)
	assert.Nil(t, padded.Info)
	assert.Empty(t, padded.Rows)
}

func TestBeca18SummaryAndMinimums(t *testing.T) {
	p := newTestProjector(t)
	res, err := p.Project(fixtureSnapshot(), "beca18", FilterState{Category: "privada"})
	require.NoError(t, err)

	assert.Len(t, res.Rows, 1)
	assert.Equal(t, Beca18Summary{ExtractedAt: "2025-03-01", TotalUniversities: "2", TotalModalities: models.Missing}, res.Summary)
	require.Len(t, res.Minimums, 2)
	assert.Equal(t, models.ModalityMinimum{Modality: "vraem", Description: models.Missing, MinimumAverage: models.Missing}, res.Minimums[1])
}

func TestUniversityLookup(t *testing.T) {
	p := newTestProjector(t)
	snap := fixtureSnapshot()

	u, ok := p.University(snap, "Universidad de Piura")
	require.True(t, ok)
	assert.Equal(t, "Piura", u.Location)

	_, ok = p.University(snap, "Universidad de Lima")
	assert.False(t, ok)
	_, ok = p.University(&dataset.Snapshot{}, "Universidad de Piura")
	assert.False(t, ok)
}

func TestGlobalView(t *testing.T) {
	p := newTestProjector(t)
	res, err := p.Project(fixtureSnapshot(), "estadisticas", FilterState{Search: "ignored"})
	require.NoError(t, err)

	rows := res.Rows.([]GlobalRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beca Tec", rows[0].Name)
	assert.Equal(t, 5, rows[0].TotalRecords)
	assert.Equal(t, "Beca beca_peru", rows[1].Name)
	assert.Equal(t, 2, rows[1].UniquePrograms)
	assert.Equal(t, GlobalSummary{GenerationDate: "2025-04-10", TotalRecords: 8, TotalCodes: 2}, res.Summary)
	assert.Equal(t, []string{"Beca Tec", "5", "3", "4", "3"}, res.Table.Rows[0])
}
