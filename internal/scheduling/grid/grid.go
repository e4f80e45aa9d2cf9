package grid

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultGranularity = 15 * time.Minute

	minutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" (a single-digit hour is tolerated) in 24-hour format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func MustParse(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type WorkingHours struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (h WorkingHours) Valid() bool {
	return h.Start.Valid() && h.End.Valid() && h.Start < h.End
}

// Grid is the ordered sequence of bookable start points for one working day.
type Grid struct {
	Hours       WorkingHours  `json:"working_hours"`
	Granularity time.Duration `json:"-"`
	Slots       []TimeOfDay   `json:"slots"`
}

// Generate produces slots from hours.Start inclusive, stepping by granularity,
// and stops strictly before hours.End. An inverted window or a non-positive
// granularity yields an empty grid.
func Generate(hours WorkingHours, granularity time.Duration) Grid {
	g := Grid{Hours: hours, Granularity: granularity, Slots: []TimeOfDay{}}
	step := TimeOfDay(granularity / time.Minute)
	if step <= 0 || hours.Start >= hours.End {
		return g
	}
	for t := hours.Start; t < hours.End; t += step {
		g.Slots = append(g.Slots, t)
	}
	return g
}

func (g Grid) Len() int {
	return len(g.Slots)
}

// IndexOf returns the position of slot in the grid, or -1.
func (g Grid) IndexOf(slot TimeOfDay) int {
	step := TimeOfDay(g.Granularity / time.Minute)
	if step <= 0 || slot < g.Hours.Start {
		return -1
	}
	offset := slot - g.Hours.Start
	if offset%step != 0 {
		return -1
	}
	i := int(offset / step)
	if i >= len(g.Slots) {
		return -1
	}
	return i
}

func (g Grid) Contains(slot TimeOfDay) bool {
	return g.IndexOf(slot) >= 0
}

// Next returns the slot immediately following slot. It reports false when slot
// is not on the grid or is the last one.
func (g Grid) Next(slot TimeOfDay) (TimeOfDay, bool) {
	i := g.IndexOf(slot)
	if i < 0 || i+1 >= len(g.Slots) {
		return 0, false
	}
	return g.Slots[i+1], true
}

// EndOf converts an inclusive end slot into the exclusive interval boundary.
// For the last slot of the grid the boundary is one granularity later, capped
// at the close of working hours.
func (g Grid) EndOf(slot TimeOfDay) (TimeOfDay, bool) {
	if next, ok := g.Next(slot); ok {
		return next, true
	}
	if !g.Contains(slot) {
		return 0, false
	}
	end := slot.Add(g.Granularity)
	if end > g.Hours.End {
		end = g.Hours.End
	}
	return end, true
}

// Between returns the grid slots in the inclusive index span between a and b,
// in ascending order regardless of argument order.
func (g Grid) Between(a, b TimeOfDay) []TimeOfDay {
	i, j := g.IndexOf(a), g.IndexOf(b)
	if i < 0 || j < 0 {
		return nil
	}
	if i > j {
		i, j = j, i
	}
	return g.Slots[i : j+1]
}
