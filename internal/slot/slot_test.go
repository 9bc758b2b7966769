package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		durationMinutes int
		wantCount       int
		wantErr         bool
	}{
		{name: "60 minute slots", durationMinutes: 60, wantCount: 24},
		{name: "30 minute slots", durationMinutes: 30, wantCount: 48},
		{name: "15 minute slots", durationMinutes: 15, wantCount: 96},
		{name: "20 minute slots", durationMinutes: 20, wantCount: 72},
		{name: "duration not dividing 60", durationMinutes: 45, wantErr: true},
		{name: "zero duration", durationMinutes: 0, wantErr: true},
		{name: "negative duration", durationMinutes: -30, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := Generate(date, tt.durationMinutes)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			require.Len(t, slots, tt.wantCount)

			// First slot is the date's UTC midnight.
			assert.Equal(t, date, slots[0])

			step := time.Duration(tt.durationMinutes) * time.Minute
			for i := 1; i < len(slots); i++ {
				assert.Equal(t, step, slots[i].Sub(slots[i-1]), "slots must be strictly increasing by the duration")
			}

			// Every slot stays within the requested day.
			last := slots[len(slots)-1]
			assert.True(t, last.Before(date.AddDate(0, 0, 1)))
		})
	}
}

func TestGenerateIgnoresTimeOfDay(t *testing.T) {
	// Generation anchors to midnight regardless of the clock on the input.
	noon := time.Date(2025, 1, 15, 12, 34, 56, 0, time.UTC)
	midnight := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	fromNoon, err := Generate(noon, 60)
	require.NoError(t, err)
	fromMidnight, err := Generate(midnight, 60)
	require.NoError(t, err)

	assert.Equal(t, fromMidnight, fromNoon)
}

func TestFilterBookable(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	slots, err := Generate(date, 60)
	require.NoError(t, err)

	// Cutoff at 10:00 means slots up to and including 10:00 are too soon.
	cutoff := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	bookable := FilterBookable(slots, cutoff)

	require.Len(t, bookable, 13)
	assert.Equal(t, time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC), bookable[0])

	// Cutoff past the day leaves nothing.
	assert.Empty(t, FilterBookable(slots, date.AddDate(0, 0, 2)))

	// Cutoff before the day keeps everything.
	assert.Len(t, FilterBookable(slots, date.AddDate(0, 0, -1)), 24)
}

func TestWithinGracePeriod(t *testing.T) {
	cutoff := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, WithinGracePeriod(cutoff.Add(-time.Hour), cutoff))
	assert.True(t, WithinGracePeriod(cutoff, cutoff), "boundary slot counts as within the grace window")
	assert.False(t, WithinGracePeriod(cutoff.Add(time.Hour), cutoff))
}
