package grid

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Properties(t *testing.T) {
	tests := []struct {
		name        string
		start       string
		end         string
		granularity time.Duration
		wantLen     int
	}{
		{name: "office day", start: "08:30", end: "18:00", granularity: 15 * time.Minute, wantLen: 38},
		{name: "half hour steps", start: "09:00", end: "12:00", granularity: 30 * time.Minute, wantLen: 6},
		{name: "window not divisible by step", start: "09:00", end: "10:10", granularity: 15 * time.Minute, wantLen: 5},
		{name: "single slot", start: "09:00", end: "09:15", granularity: 15 * time.Minute, wantLen: 1},
		{name: "whole day", start: "00:00", end: "23:59", granularity: time.Hour, wantLen: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := WorkingHours{Start: MustParse(tt.start), End: MustParse(tt.end)}
			g := Generate(hours, tt.granularity)

			require.Len(t, g.Slots, tt.wantLen)
			assert.Equal(t, hours.Start, g.Slots[0])
			assert.Less(t, int(g.Slots[len(g.Slots)-1]), int(hours.End))
			for i := 1; i < len(g.Slots); i++ {
				assert.Equal(t, tt.granularity, time.Duration(g.Slots[i]-g.Slots[i-1])*time.Minute)
			}
		})
	}
}

func TestGenerate_EmptyWindow(t *testing.T) {
	cases := []WorkingHours{
		{Start: MustParse("18:00"), End: MustParse("08:30")},
		{Start: MustParse("09:00"), End: MustParse("09:00")},
	}
	for _, hours := range cases {
		g := Generate(hours, DefaultGranularity)
		assert.Empty(t, g.Slots, "hours %s-%s", hours.Start, hours.End)
	}

	g := Generate(WorkingHours{Start: MustParse("09:00"), End: MustParse("10:00")}, 0)
	assert.Empty(t, g.Slots)
}

func TestGenerate_Deterministic(t *testing.T) {
	hours := WorkingHours{Start: MustParse("08:30"), End: MustParse("18:00")}
	assert.Equal(t, Generate(hours, DefaultGranularity), Generate(hours, DefaultGranularity))
}

func TestGenerate_OfficeHoursBoundaries(t *testing.T) {
	g := Generate(WorkingHours{Start: MustParse("08:30"), End: MustParse("18:00")}, DefaultGranularity)

	assert.Equal(t, "08:30", g.Slots[0].String())
	require.NotEmpty(t, g.Slots)
	assert.Equal(t, "17:45", g.Slots[len(g.Slots)-1].String())
	assert.False(t, g.Contains(MustParse("18:00")))
}

func TestGrid_Next(t *testing.T) {
	g := Generate(WorkingHours{Start: MustParse("09:00"), End: MustParse("10:00")}, DefaultGranularity)

	next, ok := g.Next(MustParse("09:15"))
	require.True(t, ok)
	assert.Equal(t, MustParse("09:30"), next)

	_, ok = g.Next(MustParse("09:45"))
	assert.False(t, ok, "last slot has no successor")

	_, ok = g.Next(MustParse("09:10"))
	assert.False(t, ok, "off-grid slot has no successor")

	_, ok = g.Next(MustParse("08:45"))
	assert.False(t, ok, "slot before the window has no successor")
}

func TestGrid_EndOf(t *testing.T) {
	g := Generate(WorkingHours{Start: MustParse("14:00"), End: MustParse("18:00")}, DefaultGranularity)

	end, ok := g.EndOf(MustParse("15:00"))
	require.True(t, ok)
	assert.Equal(t, "15:15", end.String())

	end, ok = g.EndOf(MustParse("17:45"))
	require.True(t, ok)
	assert.Equal(t, "18:00", end.String(), "last slot closes at the end of working hours")

	uneven := Generate(WorkingHours{Start: MustParse("09:00"), End: MustParse("10:10")}, DefaultGranularity)
	end, ok = uneven.EndOf(MustParse("10:00"))
	require.True(t, ok)
	assert.Equal(t, "10:10", end.String())

	_, ok = g.EndOf(MustParse("13:45"))
	assert.False(t, ok)
}

func TestGrid_Between(t *testing.T) {
	g := Generate(WorkingHours{Start: MustParse("09:00"), End: MustParse("11:00")}, DefaultGranularity)

	forward := g.Between(MustParse("09:30"), MustParse("10:00"))
	backward := g.Between(MustParse("10:00"), MustParse("09:30"))
	assert.Equal(t, forward, backward)
	assert.Equal(t, []TimeOfDay{MustParse("09:30"), MustParse("09:45"), MustParse("10:00")}, forward)

	assert.Nil(t, g.Between(MustParse("09:31"), MustParse("10:00")))
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:30", want: "08:30"},
		{in: "9:05", want: "09:05"},
		{in: " 17:45 ", want: "17:45"},
		{in: "23:59", want: "23:59"},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "09-00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	var payload struct {
		Slot TimeOfDay `json:"slot"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"slot":"14:15"}`), &payload))
	assert.Equal(t, MustParse("14:15"), payload.Slot)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slot":"14:15"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"slot":"25:00"}`), &payload))
}
