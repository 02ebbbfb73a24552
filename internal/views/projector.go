// Package views projects dataset snapshots into the dashboard's views.
package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/david/becas-dashboard/internal/aggregate"
	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/filter"
	"github.com/david/becas-dashboard/internal/models"
)

var ErrUnknownView = errors.New("unknown view")

// Projector turns a snapshot and a FilterState into a ViewResult. It holds
// no mutable state and is safe for concurrent use.
type Projector struct {
	views  []ViewConfig
	byName map[string]ViewConfig
}

// NewProjector validates reg and builds a projector over its views.
func NewProjector(reg *Registry) (*Projector, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view registry: %w", err)
	}
	p := &Projector{byName: make(map[string]ViewConfig, len(reg.Views))}
	for _, v := range reg.Views {
		p.views = append(p.views, v)
		p.byName[v.Name] = v
	}
	return p, nil
}

// Views returns the configured views in declaration order.
func (p *Projector) Views() []ViewConfig {
	out := make([]ViewConfig, len(p.views))
	copy(out, p.views)
	return out
}

// Project renders the named view. Unknown names return ErrUnknownView; an
// empty snapshot or a filter matching nothing yields an empty result.
func (p *Projector) Project(snap *dataset.Snapshot, name string, fs FilterState) (ViewResult, error) {
	cfg, ok := p.byName[name]
	if !ok {
		return ViewResult{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	if snap == nil {
		snap = &dataset.Snapshot{}
	}

	res := ViewResult{View: cfg.Name, Title: cfg.Title}
	switch {
	case cfg.Kind == KindGlobal:
		projectGlobal(&res, cfg, snap)
	case cfg.Dataset == DatasetBeca18:
		projectBeca18(&res, cfg, snap, fs)
	case cfg.Dataset == DatasetInstitutions:
		projectInstitutions(&res, cfg, snap, fs)
	case cfg.Dataset == DatasetIntegral:
		projectCatalog(&res, cfg, snap, fs)
	}
	return res, nil
}

// ProjectAll renders every view unfiltered, in declaration order.
func (p *Projector) ProjectAll(snap *dataset.Snapshot) []ViewResult {
	out := make([]ViewResult, 0, len(p.views))
	for _, v := range p.views {
		res, _ := p.Project(snap, v.Name, FilterState{})
		out = append(out, res)
	}
	return out
}

// University looks up a Beca 18 university by name, ignoring surrounding blanks.
func (p *Projector) University(snap *dataset.Snapshot, name string) (models.University18Record, bool) {
	name = strings.TrimSpace(name)
	if snap == nil || snap.Beca18 == nil || name == "" {
		return models.University18Record{}, false
	}
	for _, u := range snap.Beca18.Universities {
		if strings.TrimSpace(u.Name) == name {
			return u, true
		}
	}
	return models.University18Record{}, false
}

func applyFilter[T models.Record](res *ViewResult, cfg ViewConfig, source []T, fs FilterState) {
	rows := filter.Records(source, fs.Search, fs.Category, cfg.CategoryField, cfg.SearchFields)
	res.Filter = fs
	res.Rows = rows
	res.Table = buildTable(cfg.Columns, rows)
	res.Total = len(source)
	res.IsEmpty = len(rows) == 0
}

func projectBeca18(res *ViewResult, cfg ViewConfig, snap *dataset.Snapshot, fs FilterState) {
	doc := snap.Beca18
	if doc == nil {
		applyFilter(res, cfg, []models.University18Record{}, fs)
		return
	}
	applyFilter(res, cfg, doc.Universities, fs)
	res.Summary = Beca18Summary{
		ExtractedAt:       models.Display(doc.ExtractedAt),
		TotalUniversities: models.Display(doc.TotalUniversities),
		TotalModalities:   models.Display(doc.TotalModalities),
	}
	if cfg.Minimums {
		res.Minimums = displayMinimums(doc.Minimums)
	}
}

func projectInstitutions(res *ViewResult, cfg ViewConfig, snap *dataset.Snapshot, fs FilterState) {
	all := snap.InstitutionRecords()
	source := all
	if cfg.Code != "" {
		source = aggregate.Scope(all, cfg.Code)
	} else if source == nil {
		source = []models.InstitutionRecord{}
	}
	applyFilter(res, cfg, source, fs)

	if cfg.Metrics {
		m := aggregate.Aggregate(all, cfg.Code, snap.GenerationDate())
		res.Metrics = &m
	}
	if doc := snap.Institutions; doc != nil && cfg.Code == "" {
		res.Summary = InstitutionsSummary{
			GenerationDate:    models.Display(doc.GenerationDate),
			TotalRecords:      models.Display(doc.TotalRecords),
			TotalScholarships: models.Display(doc.TotalScholarships),
		}
	}
	if cfg.Info != nil && infoApplies(cfg.Info, fs) {
		res.Info = infoBlock(snap.Integral, cfg.Info)
	}
}

func projectCatalog(res *ViewResult, cfg ViewConfig, snap *dataset.Snapshot, fs FilterState) {
	doc := snap.Integral
	applyFilter(res, cfg, doc.Catalog(), fs)
	if doc != nil {
		res.Summary = CatalogSummary{
			ExtractedAt:     models.Display(doc.ExtractedAt),
			TotalCategories: len(doc.Categories),
			TotalEntries:    len(doc.Entries),
		}
	}
	if cfg.Info != nil && infoApplies(cfg.Info, fs) {
		res.Info = infoBlock(doc, cfg.Info)
	}
}

func projectGlobal(res *ViewResult, cfg ViewConfig, snap *dataset.Snapshot) {
	records := snap.InstitutionRecords()
	metrics := aggregate.ByCode(records, snap.GenerationDate())

	rows := make([]GlobalRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, GlobalRow{Name: scholarshipName(snap.Institutions, records, m.Code), DerivedMetrics: m})
	}
	res.Rows = rows
	res.Table = buildTable(cfg.Columns, rows)
	res.Total = len(rows)
	res.IsEmpty = len(rows) == 0
	res.Summary = GlobalSummary{
		GenerationDate: models.Display(snap.GenerationDate()),
		TotalRecords:   len(records),
		TotalCodes:     len(rows),
	}
}

func infoApplies(cfg *InfoConfig, fs FilterState) bool {
	if cfg.WhenCategory == "" {
		return true
	}
	return filter.EqualFold(fs.Category, cfg.WhenCategory)
}

// scholarshipName prefers the generator's summary name, then the first record
// carrying a name, then the code itself.
func scholarshipName(doc *models.InstitutionsDocument, records []models.InstitutionRecord, code string) string {
	if doc != nil {
		if s, ok := doc.Summaries[code]; ok && strings.TrimSpace(s.Name) != "" {
			return s.Name
		}
	}
	for _, r := range records {
		if r.ScholarshipCode == code && strings.TrimSpace(r.ScholarshipName) != "" {
			return r.ScholarshipName
		}
	}
	return code
}
