package views

import (
	"strings"

	"github.com/david/becas-dashboard/internal/models"
)

var infoLabels = map[string]string{
	"name":                "Nombre",
	"institution":         "Institución",
	"category":            "Categoría",
	"study_type":          "Tipo de estudio",
	"modality":            "Modalidad",
	"coverage":            "Cobertura",
	"status":              "Estado",
	"official_url":        "URL oficial",
	"scholarship_count":   "Cantidad de becas",
	"specific_modalities": "Modalidades",
	"age_limit":           "Edad límite",
	"funding":             "Financiamiento",
}

// infoBlock renders the configured fields of the catalog entry cfg.Code.
// It returns nil when the entry is absent from the integral dataset.
func infoBlock(integral *models.IntegralDocument, cfg *InfoConfig) *InfoBlock {
	entry, ok := integral.Entry(cfg.Code)
	if !ok {
		return nil
	}

	block := &InfoBlock{Code: cfg.Code, Title: cfg.Title, Items: make([]InfoItem, 0, len(cfg.Fields))}
	for _, f := range cfg.Fields {
		v := entry.Field(f)
		if f == "specific_modalities" {
			v = strings.Join(entry.SpecificModalities, ", ")
		}
		block.Items = append(block.Items, InfoItem{Label: infoLabels[f], Value: models.Display(v)})
	}

	if cfg.Schedule && entry.Schedule != nil {
		s := entry.Schedule
		block.Schedule = []InfoItem{
			{Label: "Postulación", Value: models.Display(s.Application)},
			{Label: "Subsanación", Value: models.Display(s.Correction)},
			{Label: "Publicación de seleccionados", Value: models.Display(s.SelectedPublication)},
			{Label: "Aceptación de la beca", Value: models.Display(s.Acceptance)},
			{Label: "Publicación de becarios", Value: models.Display(s.ScholarsPublication)},
		}
	}
	return block
}

// displayMinimums applies the missing-value sentinel to every minimum.
// Additional requirements stay blank when absent; they are optional.
func displayMinimums(in []models.ModalityMinimum) []models.ModalityMinimum {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.ModalityMinimum, len(in))
	for i, m := range in {
		out[i] = models.ModalityMinimum{
			Modality:               models.Display(m.Modality),
			Description:            models.Display(m.Description),
			MinimumAverage:         models.Display(m.MinimumAverage),
			AdditionalRequirements: strings.TrimSpace(m.AdditionalRequirements),
		}
	}
	return out
}
