package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/planloop/planloop/internal/dto"
)

func TestResultMergerGroupsByType(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newResultMerger(since)

	require.True(t, m.add("TodoItem", dto.DTO{"uid": "t1"}, ""))
	require.True(t, m.add("TodoItem", dto.DTO{"uid": "t2"}, ""))
	require.True(t, m.add("Recipe", dto.DTO{"uid": "r1"}, ""))

	batch := m.result()
	require.Len(t, batch["TodoItem"], 2)
	require.Len(t, batch["Recipe"], 1)
}

func TestResultMergerExcludesOwnEchoes(t *testing.T) {
	m := newResultMerger(time.Unix(0, 0).UTC())

	require.False(t, m.add("TodoItem", dto.DTO{"uid": "t1", "lastModifiedBy": "me"}, "me"))
	require.True(t, m.add("TodoItem", dto.DTO{"uid": "t2", "lastModifiedBy": "friend"}, "me"))
	// no exclusion requested, own edits pass through
	require.True(t, m.add("TodoItem", dto.DTO{"uid": "t3", "lastModifiedBy": "me"}, ""))

	batch := m.result()
	require.Len(t, batch["TodoItem"], 2)
}

func TestResultMergerWatermarkAdvances(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newResultMerger(since)

	newer := since.Add(time.Hour)
	m.add("TodoItem", dto.DTO{"uid": "t1", "lastModified": newer}, "")
	m.add("TodoItem", dto.DTO{"uid": "t2", "lastModified": since.Add(time.Minute)}, "")

	mark, advanced := m.watermark(since)
	require.True(t, advanced)
	require.Equal(t, newer, mark)
}

func TestResultMergerWatermarkHoldsWhenNothingNewer(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// empty pull
	m := newResultMerger(since)
	mark, advanced := m.watermark(since)
	require.False(t, advanced)
	require.Equal(t, since, mark)

	// documents at or before the mark do not move it
	m = newResultMerger(since)
	m.add("TodoItem", dto.DTO{"uid": "t1", "lastModified": since}, "")
	m.add("TodoItem", dto.DTO{"uid": "t2", "lastModified": since.Add(-time.Hour)}, "")
	m.add("TodoItem", dto.DTO{"uid": "t3"}, "")

	mark, advanced = m.watermark(since)
	require.False(t, advanced)
	require.Equal(t, since, mark)
}

func TestResultMergerExcludedEchoDoesNotMoveWatermark(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newResultMerger(since)

	m.add("TodoItem", dto.DTO{
		"uid":            "t1",
		"lastModifiedBy": "me",
		"lastModified":   since.Add(time.Hour),
	}, "me")

	_, advanced := m.watermark(since)
	require.False(t, advanced)
}
