package remote

import (
	"sync"
	"time"

	"github.com/planloop/planloop/internal/dto"
)

// resultMerger accumulates concurrently fetched DTOs into one grouped batch
// and tracks the newest lastModified timestamp observed. Safe for use from
// multiple query goroutines.
type resultMerger struct {
	mu      sync.Mutex
	batch   UpdateBatch
	maxSeen time.Time
}

func newResultMerger(since time.Time) *resultMerger {
	return &resultMerger{batch: UpdateBatch{}, maxSeen: since}
}

// add records one fetched document, unless it is an echo of the excluded
// modifier's own writes. Reports whether the document was kept.
func (m *resultMerger) add(typ string, d dto.DTO, excludeModifier string) bool {
	if excludeModifier != "" {
		if by, _ := d.Str("lastModifiedBy"); by == excludeModifier {
			return false
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batch[typ] = append(m.batch[typ], d)
	if lm, ok := d.Time("lastModified"); ok && lm.After(m.maxSeen) {
		m.maxSeen = lm
	}
	return true
}

func (m *resultMerger) result() UpdateBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batch
}

// watermark reports the advanced low-water mark. It returns false when
// nothing newer than prev was observed, so the persisted mark never moves
// backwards and is not rewritten on an empty pull.
func (m *resultMerger) watermark(prev time.Time) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxSeen.After(prev) {
		return m.maxSeen, true
	}
	return prev, false
}
