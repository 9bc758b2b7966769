package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAvailableAt(t *testing.T) {
	// 2025-01-15 is a Wednesday.
	wednesday := func(hour int) time.Time {
		return time.Date(2025, 1, 15, hour, 0, 0, 0, time.UTC)
	}

	nineToFive := WorkSchedule{
		"wednesday": {{StartMinutes: 9 * 60, EndMinutes: 17 * 60}},
	}

	tests := []struct {
		name     string
		schedule WorkSchedule
		slot     time.Time
		want     bool
	}{
		{name: "inside working hours", schedule: nineToFive, slot: wednesday(14), want: true},
		{name: "outside working hours", schedule: nineToFive, slot: wednesday(20), want: false},
		{name: "start of range is inclusive", schedule: nineToFive, slot: wednesday(9), want: true},
		{name: "end of range is exclusive", schedule: nineToFive, slot: wednesday(17), want: false},
		{name: "no ranges for that weekday", schedule: WorkSchedule{"monday": {{StartMinutes: 540, EndMinutes: 1020}}}, slot: wednesday(14), want: false},
		{name: "empty schedule never available", schedule: WorkSchedule{}, slot: wednesday(14), want: false},
		{
			name: "second range of a split shift",
			schedule: WorkSchedule{
				"wednesday": {
					{StartMinutes: 9 * 60, EndMinutes: 12 * 60},
					{StartMinutes: 14 * 60, EndMinutes: 18 * 60},
				},
			},
			slot: wednesday(15),
			want: true,
		},
		{
			name: "gap of a split shift",
			schedule: WorkSchedule{
				"wednesday": {
					{StartMinutes: 9 * 60, EndMinutes: 12 * 60},
					{StartMinutes: 14 * 60, EndMinutes: 18 * 60},
				},
			},
			slot: wednesday(13),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Employee{ID: "emp-1", Schedule: tt.schedule}
			assert.Equal(t, tt.want, e.IsAvailableAt(tt.slot))
		})
	}
}

func TestIsAvailableAtEvaluatesUTC(t *testing.T) {
	// 20:00 UTC on Tuesday expressed as Wednesday 04:00 in UTC+8. The
	// predicate must evaluate the UTC weekday, i.e. Tuesday.
	taipei := time.FixedZone("UTC+8", 8*60*60)
	slot := time.Date(2025, 1, 15, 4, 0, 0, 0, taipei)

	e := &Employee{Schedule: WorkSchedule{
		"tuesday": {{StartMinutes: 18 * 60, EndMinutes: 22 * 60}},
	}}
	assert.True(t, e.IsAvailableAt(slot))
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeRange
		wantErr bool
	}{
		{input: "09:00-17:00", want: TimeRange{StartMinutes: 540, EndMinutes: 1020}},
		{input: "00:00-24:00", want: TimeRange{StartMinutes: 0, EndMinutes: 1440}},
		{input: "9:30-10:00", want: TimeRange{StartMinutes: 570, EndMinutes: 600}},
		{input: "17:00-09:00", wantErr: true},
		{input: "09:00", wantErr: true},
		{input: "25:00-26:00", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkScheduleRoundTrip(t *testing.T) {
	ws := WorkSchedule{
		"wednesday": {{StartMinutes: 540, EndMinutes: 1020}},
	}
	require.NoError(t, ws.Validate())

	r := ws["wednesday"][0]
	assert.Equal(t, "09:00-17:00", r.String())

	parsed, err := ParseTimeRange(r.String())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestWorkScheduleValidate(t *testing.T) {
	bad := WorkSchedule{"someday": {{StartMinutes: 0, EndMinutes: 60}}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSchedule)
}

func TestCanFulfill(t *testing.T) {
	e := &Employee{ServiceIDs: []string{"svc-1", "svc-2"}}
	assert.True(t, e.CanFulfill("svc-2"))
	assert.False(t, e.CanFulfill("svc-3"))
}
