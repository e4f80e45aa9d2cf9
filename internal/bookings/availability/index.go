package availability

import (
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/model"
)

// Index answers slot occupancy questions for the office bookings of one day.
// Remote bookings never occupy a resource and are left out.
type Index struct {
	date     string
	bookings []*model.Booking
}

func NewIndex(date string, bookings []*model.Booking) *Index {
	idx := &Index{date: date}
	for _, b := range bookings {
		if b == nil || !b.IsOffice() || b.Date != date {
			continue
		}
		idx.bookings = append(idx.bookings, b)
	}
	return idx
}

// FindBookingForSlot returns the booking that owns slot on resource, or nil.
// If bookings ever overlap, the first one in storage order wins.
func (idx *Index) FindBookingForSlot(date string, slot grid.TimeOfDay, resource model.Resource) *model.Booking {
	if date != idx.date {
		return nil
	}
	for _, b := range idx.bookings {
		if b.Resource() == resource && b.Occupies(slot) {
			return b
		}
	}
	return nil
}

// ConflictingBooking scans the inclusive grid span between s1 and s2 and
// returns the first booking found, or nil when the whole span is free.
func (idx *Index) ConflictingBooking(date string, s1, s2 grid.TimeOfDay, g grid.Grid, resource model.Resource) *model.Booking {
	for _, slot := range g.Between(s1, s2) {
		if b := idx.FindBookingForSlot(date, slot, resource); b != nil {
			return b
		}
	}
	return nil
}

// HasConflictInRange reports whether any slot in the inclusive span between
// s1 and s2 is booked for resource. It is symmetric in s1 and s2.
func (idx *Index) HasConflictInRange(date string, s1, s2 grid.TimeOfDay, g grid.Grid, resource model.Resource) bool {
	return idx.ConflictingBooking(date, s1, s2, g, resource) != nil
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2) intersect.
func Overlaps(s1, e1, s2, e2 grid.TimeOfDay) bool {
	return s1 < e2 && e1 > s2
}

// FirstOverlap returns the first office booking on resource whose interval
// intersects [start, end).
func FirstOverlap(existing []*model.Booking, date string, resource model.Resource, start, end grid.TimeOfDay) *model.Booking {
	for _, b := range existing {
		if b == nil || !b.IsOffice() || b.Date != date || b.Resource() != resource {
			continue
		}
		if Overlaps(b.Start, b.End, start, end) {
			return b
		}
	}
	return nil
}
