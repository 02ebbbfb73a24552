package dataset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/becas-dashboard/internal/models"
)

func completeSnapshot(id string) *Snapshot {
	return &Snapshot{
		CycleID:      id,
		Beca18:       &models.Beca18Document{ExtractedAt: id},
		Institutions: &models.InstitutionsDocument{GenerationDate: id},
		Integral:     &models.IntegralDocument{ExtractedAt: id},
	}
}

func TestStore_StartsEmpty(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Loaded())
	snap := s.Current()
	require.NotNil(t, snap)
	assert.True(t, snap.Empty())
	assert.Nil(t, snap.InstitutionRecords())
	assert.Equal(t, "", snap.GenerationDate())
}

func TestStore_ReplacePublishesWholeSnapshot(t *testing.T) {
	s := NewStore()
	s.Replace(completeSnapshot("a"))

	assert.True(t, s.Loaded())
	assert.Equal(t, "a", s.Current().CycleID)
	assert.Equal(t, "a", s.Current().GenerationDate())
}

func TestStore_ReplaceRejectsPartialSnapshot(t *testing.T) {
	s := NewStore()
	partial := completeSnapshot("b")
	partial.Integral = nil

	assert.Panics(t, func() { s.Replace(partial) })
	assert.False(t, s.Loaded())
}

func TestStore_ConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore()
	s.Replace(completeSnapshot("0"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := s.Current()
				if snap.Beca18.ExtractedAt != snap.Institutions.GenerationDate || snap.Beca18.ExtractedAt != snap.Integral.ExtractedAt {
					t.Errorf("mixed snapshot observed: %q/%q/%q", snap.Beca18.ExtractedAt, snap.Institutions.GenerationDate, snap.Integral.ExtractedAt)
					return
				}
			}
		}()
	}
	for _, id := range []string{"1", "2", "3", "4"} {
		s.Replace(completeSnapshot(id))
	}
	wg.Wait()
}
