package selection

import (
	bookingerrors "roomdesk/internal/bookings/errors"
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/model"
)

type Kind string

const (
	KindEmpty     Kind = "empty"
	KindAnchorSet Kind = "anchor_set"
	KindRangeSet  Kind = "range_set"
)

// State is the current range selection of one booking dialog.
// Anchor is meaningful for KindAnchorSet; Start and End for KindRangeSet,
// where End is the inclusive last selected slot.
type State struct {
	Kind   Kind           `json:"kind"`
	Anchor grid.TimeOfDay `json:"anchor,omitempty"`
	Start  grid.TimeOfDay `json:"start,omitempty"`
	End    grid.TimeOfDay `json:"end,omitempty"`
}

func Empty() State {
	return State{Kind: KindEmpty}
}

func AnchorSet(anchor grid.TimeOfDay) State {
	return State{Kind: KindAnchorSet, Anchor: anchor}
}

func RangeSet(a, b grid.TimeOfDay) State {
	if a > b {
		a, b = b, a
	}
	return State{Kind: KindRangeSet, Start: a, End: b}
}

func (s State) IsRange() bool {
	return s.Kind == KindRangeSet
}

type Outcome string

const (
	OutcomeShowBooking   Outcome = "show_booking"
	OutcomeAnchored      Outcome = "anchored"
	OutcomeCleared       Outcome = "cleared"
	OutcomeRangeSelected Outcome = "range_selected"
)

// Result describes what a click did. Booking is set for OutcomeShowBooking.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	State   State          `json:"state"`
	Booking *model.Booking `json:"booking,omitempty"`
}

// Checker answers occupancy questions for the dialog's day.
type Checker interface {
	FindBookingForSlot(date string, slot grid.TimeOfDay, resource model.Resource) *model.Booking
	ConflictingBooking(date string, s1, s2 grid.TimeOfDay, g grid.Grid, resource model.Resource) *model.Booking
}

// Machine drives the two-click range selection for one date and resource.
// It is not safe for concurrent use.
type Machine struct {
	date     string
	resource model.Resource
	grid     grid.Grid
	checker  Checker
	state    State
}

func NewMachine(date string, resource model.Resource, g grid.Grid, checker Checker) *Machine {
	return &Machine{
		date:     date,
		resource: resource,
		grid:     g,
		checker:  checker,
		state:    Empty(),
	}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Date() string {
	return m.date
}

func (m *Machine) Resource() model.Resource {
	return m.resource
}

func (m *Machine) Grid() grid.Grid {
	return m.grid
}

// SetChecker swaps the occupancy source, typically after the day's bookings
// were reloaded. The current state is kept.
func (m *Machine) SetChecker(checker Checker) {
	m.checker = checker
}

// SetResource changes the active resource. An existing range is not
// re-validated; the next click or the commit will catch conflicts.
func (m *Machine) SetResource(resource model.Resource) {
	m.resource = resource
}

func (m *Machine) Reset() {
	m.state = Empty()
}

// Click applies one slot click. A click on a booked slot only reports that
// booking. A second click whose span crosses a booking returns a
// *ConflictError and keeps the anchor.
func (m *Machine) Click(slot grid.TimeOfDay) (Result, error) {
	if !m.grid.Contains(slot) {
		return Result{State: m.state}, bookingerrors.ErrSlotNotOnGrid
	}

	if b := m.lookup(slot); b != nil {
		return Result{Outcome: OutcomeShowBooking, State: m.state, Booking: b}, nil
	}

	switch m.state.Kind {
	case KindAnchorSet:
		anchor := m.state.Anchor
		if slot == anchor {
			m.state = Empty()
			return Result{Outcome: OutcomeCleared, State: m.state}, nil
		}
		if b := m.conflict(anchor, slot); b != nil {
			return Result{State: m.state}, &bookingerrors.ConflictError{Booking: b}
		}
		m.state = RangeSet(anchor, slot)
		return Result{Outcome: OutcomeRangeSelected, State: m.state}, nil
	default:
		m.state = AnchorSet(slot)
		return Result{Outcome: OutcomeAnchored, State: m.state}, nil
	}
}

func (m *Machine) lookup(slot grid.TimeOfDay) *model.Booking {
	if m.checker == nil || m.resource.IsZero() {
		return nil
	}
	return m.checker.FindBookingForSlot(m.date, slot, m.resource)
}

func (m *Machine) conflict(a, b grid.TimeOfDay) *model.Booking {
	if m.checker == nil || m.resource.IsZero() {
		return nil
	}
	return m.checker.ConflictingBooking(m.date, a, b, m.grid, m.resource)
}
