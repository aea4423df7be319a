package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustWindow(t *testing.T, start time.Time, d time.Duration) Window {
	t.Helper()
	w, err := NewWindow(start, d)
	assert.NoError(t, err)
	return w
}

func TestNewWindowRejectsNonPositiveDuration(t *testing.T) {
	now := time.Now()

	_, err := NewWindow(now, 0)
	assert.Error(t, err)

	_, err = NewWindow(now, -30*time.Minute)
	assert.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	a := mustWindow(t, base, 90*time.Minute)                      // 19:00 - 20:30
	inside := mustWindow(t, base.Add(30*time.Minute), 30*time.Minute) // 19:30 - 20:00
	overlapping := mustWindow(t, base.Add(60*time.Minute), 2*time.Hour)
	adjacent := mustWindow(t, base.Add(90*time.Minute), time.Hour) // 20:30 - 21:30
	disjoint := mustWindow(t, base.Add(4*time.Hour), time.Hour)

	assert.True(t, Overlaps(a, inside))
	assert.True(t, Overlaps(inside, a))
	assert.True(t, Overlaps(a, overlapping))
	assert.True(t, Overlaps(a, a))

	// window yang persis bersinggungan bukan bentrok (booking back-to-back)
	assert.False(t, Overlaps(a, adjacent))
	assert.False(t, Overlaps(adjacent, a))

	assert.False(t, Overlaps(a, disjoint))
}

func TestWindowContains(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, time.Hour)

	assert.True(t, w.Contains(base))
	assert.True(t, w.Contains(base.Add(59*time.Minute)))
	assert.False(t, w.Contains(base.Add(time.Hour))) // half-open: End tidak termasuk
	assert.False(t, w.Contains(base.Add(-time.Minute)))
}

func TestWindowDuration(t *testing.T) {
	w := mustWindow(t, time.Now(), 45*time.Minute)
	assert.Equal(t, 45*time.Minute, w.Duration())
}
