package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "roomdesk/internal/bookings/errors"
	"roomdesk/pkg/model"

	"github.com/google/uuid"
)

type memoryBookingRepository struct {
	mu     sync.RWMutex
	byDate map[string][]*model.Booking
	byID   map[string]*model.Booking
}

// NewMemoryBookingRepository keeps bookings in process memory. Lists are
// returned in insertion order.
func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		byDate: make(map[string][]*model.Booking),
		byID:   make(map[string]*model.Booking),
	}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[booking.ID]; exists {
		return fmt.Errorf("failed to create booking: duplicate id %s", booking.ID)
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	stored := clone(booking)
	r.byID[stored.ID] = stored
	r.byDate[stored.Date] = append(r.byDate[stored.Date], stored)
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return clone(b), nil
}

func (r *memoryBookingRepository) FindByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Booking, 0, len(r.byDate[date]))
	for _, b := range r.byDate[date] {
		out = append(out, clone(b))
	}
	return out, nil
}

func (r *memoryBookingRepository) FindByDateAndResource(ctx context.Context, date string, resource model.Resource) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Booking{}
	for _, b := range r.byDate[date] {
		if b.IsOffice() && b.Resource() == resource {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

// ExecuteTransaction runs fn directly. Atomicity across calls comes from the
// commit lock, not from this store.
func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	return fn(ctx)
}

func clone(b *model.Booking) *model.Booking {
	c := *b
	if b.Invitees != nil {
		c.Invitees = append([]string(nil), b.Invitees...)
	}
	return &c
}
