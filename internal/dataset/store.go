// Package dataset holds the snapshot of source documents every view reads from.
package dataset

import (
	"sync/atomic"
	"time"

	"github.com/david/becas-dashboard/internal/models"
)

// Snapshot is one internally consistent set of the three source documents.
// A Snapshot is never mutated after it has been published to a Store.
type Snapshot struct {
	CycleID      string
	LoadedAt     time.Time
	Beca18       *models.Beca18Document
	Institutions *models.InstitutionsDocument
	Integral     *models.IntegralDocument
}

// Empty reports whether no documents have been loaded yet.
func (s *Snapshot) Empty() bool {
	return s == nil || (s.Beca18 == nil && s.Institutions == nil && s.Integral == nil)
}

// InstitutionRecords returns the institutions rows, or nil when nothing is loaded.
func (s *Snapshot) InstitutionRecords() []models.InstitutionRecord {
	if s == nil || s.Institutions == nil {
		return nil
	}
	return s.Institutions.Records
}

// GenerationDate is the institutions dataset generation date, blank when unknown.
func (s *Snapshot) GenerationDate() string {
	if s == nil || s.Institutions == nil {
		return ""
	}
	return s.Institutions.GenerationDate
}

// Store publishes snapshots. Readers always observe a complete snapshot:
// Replace swaps a single pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the published snapshot. Before the first Replace it returns
// an empty, non-nil snapshot.
func (s *Store) Current() *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return &Snapshot{}
}

// Loaded reports whether a snapshot has ever been published.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Replace publishes snap. All three documents must be present.
func (s *Store) Replace(snap *Snapshot) {
	if snap == nil || snap.Beca18 == nil || snap.Institutions == nil || snap.Integral == nil {
		panic("dataset: Replace requires a complete snapshot")
	}
	s.current.Store(snap)
}
