package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/david/becas-dashboard/internal/models"
)

var ErrHTMLDocument = errors.New("received an HTML page instead of JSON")

const maxDocumentSize = 64 << 20

// ReadDocument drains and closes doc.Body. HTML responses (typically an error
// or login page served with status 200) are rejected with ErrHTMLDocument.
func ReadDocument(doc *FetchedDocument) ([]byte, error) {
	defer doc.Body.Close()
	data, err := io.ReadAll(io.LimitReader(doc.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if looksLikeHTML(doc.ContentType, data) {
		return nil, htmlError(data)
	}
	return data, nil
}

func looksLikeHTML(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	b := bytes.TrimSpace(data)
	return len(b) > 0 && b[0] == '<'
}

func htmlError(data []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ErrHTMLDocument
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return ErrHTMLDocument
	}
	return fmt.Errorf("%w: %q", ErrHTMLDocument, title)
}

func decodeTop(data []byte, v any) error {
	if !isObject(data) {
		if len(bytes.TrimSpace(data)) == 0 {
			return errors.New("empty document")
		}
		return errors.New("document is not a JSON object")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

type rawBeca18 struct {
	ExtractedAt       Text            `json:"fecha_extraccion"`
	TotalUniversities Text            `json:"total_universidades"`
	TotalModalities   Text            `json:"total_modalidades"`
	Universities      json.RawMessage `json:"universidades_elegibles"`
	Minimums          json.RawMessage `json:"promedios_minimos_por_modalidad"`
}

type rawUniversity struct {
	Name       Text            `json:"nombre"`
	Type       Text            `json:"tipo"`
	Quintile   Text            `json:"quintil"`
	Location   Text            `json:"ubicacion"`
	Status     Text            `json:"estado"`
	CallYear   Text            `json:"convocatoria"`
	Eligible   Flag            `json:"elegible_beca18"`
	Source     Text            `json:"fuente"`
	SourceURL  Text            `json:"fuente_url"`
	Modalities json.RawMessage `json:"modalidades"`
}

type rawUniversityModality struct {
	Name         Text `json:"modalidad"`
	MinimumGrade Text `json:"nota_minima"`
	Requirements Text `json:"requisitos_adicionales"`
	Description  Text `json:"descripcion"`
}

type rawMinimum struct {
	Description         Text `json:"descripcion"`
	ModalityDescription Text `json:"descripcion_modalidad"`
	MinimumAverage      Text `json:"promedio_minimo"`
	ApproximateGrade    Text `json:"nota_aproximada"`
	Requirements        Text `json:"requisitos_adicionales"`
}

// ParseBeca18 decodes the scholarship-18 document.
func ParseBeca18(data []byte) (*models.Beca18Document, error) {
	var raw rawBeca18
	if err := decodeTop(data, &raw); err != nil {
		return nil, err
	}

	doc := &models.Beca18Document{
		ExtractedAt:       raw.ExtractedAt.String(),
		TotalUniversities: raw.TotalUniversities.String(),
		TotalModalities:   raw.TotalModalities.String(),
		Universities:      []models.University18Record{},
	}
	for _, u := range objects[rawUniversity](raw.Universities) {
		rec := models.University18Record{
			Name:      u.Name.String(),
			Type:      u.Type.String(),
			Quintile:  u.Quintile.String(),
			Location:  u.Location.String(),
			Status:    u.Status.String(),
			CallYear:  u.CallYear.String(),
			Eligible:  bool(u.Eligible),
			Source:    u.Source.String(),
			SourceURL: u.SourceURL.String(),
		}
		for _, m := range objects[rawUniversityModality](u.Modalities) {
			rec.Modalities = append(rec.Modalities, models.UniversityModality{
				Name:                   m.Name.String(),
				MinimumGrade:           m.MinimumGrade.String(),
				AdditionalRequirements: m.Requirements.String(),
				Description:            m.Description.String(),
			})
		}
		doc.Universities = append(doc.Universities, rec)
	}

	if mins, ok := members[rawMinimum](raw.Minimums); ok {
		doc.Minimums = make([]models.ModalityMinimum, 0, len(mins))
		for _, name := range sortedKeys(mins) {
			m := mins[name]
			doc.Minimums = append(doc.Minimums, models.ModalityMinimum{
				Modality:               name,
				Description:            firstText(m.Description, m.ModalityDescription),
				MinimumAverage:         firstText(m.MinimumAverage, m.ApproximateGrade),
				AdditionalRequirements: m.Requirements.String(),
			})
		}
	}
	return doc, nil
}

type rawInstitutions struct {
	Metadata   json.RawMessage `json:"metadatos"`
	Statistics json.RawMessage `json:"estadisticas"`
	Records    json.RawMessage `json:"datos"`
}

type rawInstitutionsMetadata struct {
	GenerationDate Text `json:"fecha_generacion"`
	Description    Text `json:"descripcion"`
	Version        Text `json:"version"`
	TotalRecords   Text `json:"total_registros"`
}

type rawInstitutionsStatistics struct {
	TotalRecords      Text            `json:"total_registros"`
	TotalScholarships Text            `json:"total_becas"`
	Summaries         json.RawMessage `json:"resumen_por_beca"`
}

type rawScholarshipSummary struct {
	Name               Text `json:"nombre_beca"`
	TotalRecords       Text `json:"total_registros"`
	UniqueInstitutions Text `json:"instituciones_unicas"`
	UniqueRegions      Text `json:"regiones_unicas"`
	UniquePrograms     Text `json:"programas_unicos"`
}

type rawInstitution struct {
	ScholarshipCode  Text `json:"codigo_beca"`
	ScholarshipName  Text `json:"nombre_beca"`
	InstitutionGroup Text `json:"tipo_instituciones"`
	InstitutionName  Text `json:"nombre_institucion"`
	InstitutionType  Text `json:"tipo_institucion"`
	Region           Text `json:"region"`
	Location         Text `json:"ubicacion"`
	Program          Text `json:"programa"`
	ProgramModality  Text `json:"modalidad_programa"`
}

// ParseInstitutions decodes the combined institutions document.
func ParseInstitutions(data []byte) (*models.InstitutionsDocument, error) {
	var raw rawInstitutions
	if err := decodeTop(data, &raw); err != nil {
		return nil, err
	}

	doc := &models.InstitutionsDocument{Records: []models.InstitutionRecord{}}

	var meta rawInstitutionsMetadata
	if object(raw.Metadata, &meta) {
		doc.GenerationDate = meta.GenerationDate.String()
		doc.Description = meta.Description.String()
		doc.Version = meta.Version.String()
		doc.TotalRecords = meta.TotalRecords.String()
	}

	var stats rawInstitutionsStatistics
	if object(raw.Statistics, &stats) {
		doc.TotalRecords = firstText(stats.TotalRecords, Text(doc.TotalRecords))
		doc.TotalScholarships = stats.TotalScholarships.String()
		if sums, ok := members[rawScholarshipSummary](stats.Summaries); ok {
			doc.Summaries = make(map[string]models.ScholarshipSummary, len(sums))
			for code, s := range sums {
				doc.Summaries[code] = models.ScholarshipSummary{
					Name:               s.Name.String(),
					TotalRecords:       s.TotalRecords.String(),
					UniqueInstitutions: s.UniqueInstitutions.String(),
					UniqueRegions:      s.UniqueRegions.String(),
					UniquePrograms:     s.UniquePrograms.String(),
				}
			}
		}
	}

	for _, r := range objects[rawInstitution](raw.Records) {
		doc.Records = append(doc.Records, models.InstitutionRecord{
			ScholarshipCode:  r.ScholarshipCode.String(),
			ScholarshipName:  r.ScholarshipName.String(),
			InstitutionGroup: r.InstitutionGroup.String(),
			InstitutionName:  r.InstitutionName.String(),
			InstitutionType:  r.InstitutionType.String(),
			Region:           r.Region.String(),
			Location:         r.Location.String(),
			Program:          r.Program.String(),
			ProgramModality:  r.ProgramModality.String(),
		})
	}
	return doc, nil
}

type rawIntegral struct {
	ExtractedAt  Text            `json:"fecha_extraccion"`
	Categories   json.RawMessage `json:"categorias"`
	Scholarships json.RawMessage `json:"becas"`
}

type rawCatalogEntry struct {
	Name               Text            `json:"nombre"`
	Institution        Text            `json:"institucion"`
	Category           Text            `json:"categoria"`
	StudyType          Text            `json:"tipo_estudio"`
	Modality           Text            `json:"modalidad"`
	Coverage           Text            `json:"cobertura"`
	OfficialURL        Text            `json:"url_oficial"`
	Status             Text            `json:"estado"`
	ScholarshipCount   Text            `json:"cantidad_becas"`
	SpecificModalities json.RawMessage `json:"modalidades_especificas"`
	AgeLimit           Text            `json:"edad_limite"`
	Funding            Text            `json:"financiamiento"`
	Schedule           json.RawMessage `json:"cronograma_segundo_momento_2025"`
}

type rawSchedule struct {
	Application         Text `json:"postulacion"`
	Correction          Text `json:"subsanacion"`
	SelectedPublication Text `json:"publicacion_seleccionados"`
	Acceptance          Text `json:"aceptacion_beca"`
	ScholarsPublication Text `json:"publicacion_becarios"`
}

// ParseIntegral decodes the integral scholarships catalog.
func ParseIntegral(data []byte) (*models.IntegralDocument, error) {
	var raw rawIntegral
	if err := decodeTop(data, &raw); err != nil {
		return nil, err
	}

	doc := &models.IntegralDocument{ExtractedAt: raw.ExtractedAt.String()}

	var cats map[string]json.RawMessage
	switch {
	case object(raw.Categories, &cats):
		doc.Categories = sortedKeys(cats)
	case isArray(raw.Categories):
		doc.Categories = texts(raw.Categories)
	}

	entries, _ := members[rawCatalogEntry](raw.Scholarships)
	if entries != nil {
		doc.Entries = make(map[string]models.ScholarshipCatalogEntry, len(entries))
	}
	for code, e := range entries {
		entry := models.ScholarshipCatalogEntry{
			Code:               code,
			Name:               e.Name.String(),
			Institution:        e.Institution.String(),
			Category:           e.Category.String(),
			StudyType:          e.StudyType.String(),
			Modality:           e.Modality.String(),
			Coverage:           e.Coverage.String(),
			OfficialURL:        e.OfficialURL.String(),
			Status:             e.Status.String(),
			ScholarshipCount:   e.ScholarshipCount.String(),
			SpecificModalities: texts(e.SpecificModalities),
			AgeLimit:           e.AgeLimit.String(),
			Funding:            e.Funding.String(),
		}
		var s rawSchedule
		if object(e.Schedule, &s) {
			entry.Schedule = &models.Schedule{
				Application:         s.Application.String(),
				Correction:          s.Correction.String(),
				SelectedPublication: s.SelectedPublication.String(),
				Acceptance:          s.Acceptance.String(),
				ScholarsPublication: s.ScholarsPublication.String(),
			}
		}
		doc.Entries[code] = entry
	}
	return doc, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
