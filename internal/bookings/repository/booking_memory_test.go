package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "roomdesk/internal/bookings/errors"
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(date string, method model.Method, branch, room, start, end string) *model.Booking {
	return &model.Booking{
		ID:        uuid.New().String(),
		Organizer: "An",
		Date:      date,
		Start:     grid.MustParse(start),
		End:       grid.MustParse(end),
		Method:    method,
		Branch:    branch,
		Room:      room,
	}
}

func TestMemoryBookingRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	first := newBooking("2025-12-05", model.MethodOffice, "Ho Chi Minh", "Room 01", "09:00", "10:30")
	second := newBooking("2025-12-05", model.MethodRemote, "", "", "11:00", "11:30")
	second.Link = "https://meet.example.com/abc"
	third := newBooking("2025-12-05", model.MethodOffice, "Ho Chi Minh", "Room 02", "09:00", "09:15")
	other := newBooking("2025-12-06", model.MethodOffice, "Ho Chi Minh", "Room 01", "09:00", "10:30")

	for _, b := range []*model.Booking{first, second, third, other} {
		require.NoError(t, repo.Create(ctx, b))
	}

	day, err := repo.FindByDate(ctx, "2025-12-05")
	require.NoError(t, err)
	require.Len(t, day, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{day[0].ID, day[1].ID, day[2].ID})

	room01, err := repo.FindByDateAndResource(ctx, "2025-12-05", model.Resource{Branch: "Ho Chi Minh", Room: "Room 01"})
	require.NoError(t, err)
	require.Len(t, room01, 1)
	assert.Equal(t, first.ID, room01[0].ID)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Start, got.Start)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryBookingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	b := newBooking("2025-12-05", model.MethodOffice, "Ha Noi", "Room 01", "09:00", "10:00")
	b.Invitees = []string{"Binh <binh@example.com>"}
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	got.Invitees[0] = "changed"
	got.Title = "changed"

	again, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Binh <binh@example.com>", again.Invitees[0])
	assert.Empty(t, again.Title)
}

func TestMemoryBookingRepository_FindByIDErrors(t *testing.T) {
	repo := NewMemoryBookingRepository()

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, bookingserrors.ErrInvalidID))

	_, err = repo.FindByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestMemoryBookingRepository_DuplicateID(t *testing.T) {
	repo := NewMemoryBookingRepository()
	b := newBooking("2025-12-05", model.MethodOffice, "Ha Noi", "Room 01", "09:00", "10:00")

	require.NoError(t, repo.Create(context.Background(), b))
	assert.Error(t, repo.Create(context.Background(), b))
}

func TestMemoryBookingLockRepository(t *testing.T) {
	ctx := context.Background()
	locks := NewMemoryBookingLockRepository()
	key := LockKey("2025-12-05", model.Resource{Branch: "Ho Chi Minh", Room: "Room 01"})
	assert.Equal(t, "booking_lock_2025-12-05_Ho_Chi_Minh_Room_01", key)

	lock, err := locks.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, bookingserrors.ErrSlotLocked)

	otherKey := LockKey("2025-12-05", model.Resource{Branch: "Ho Chi Minh", Room: "Room 02"})
	other, err := locks.Acquire(ctx, otherKey, time.Minute)
	require.NoError(t, err)
	require.NoError(t, locks.Release(ctx, other))

	stale := *lock
	stale.Token = "someone-else"
	require.NoError(t, locks.Release(ctx, &stale))
	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, bookingserrors.ErrSlotLocked, "release with a foreign token is a no-op")

	require.NoError(t, locks.Release(ctx, lock))
	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.NoError(t, err)
}

func TestMemoryBookingLockRepository_ExpiredLockIsTakenOver(t *testing.T) {
	ctx := context.Background()
	locks := NewMemoryBookingLockRepository()

	_, err := locks.Acquire(ctx, "k", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = locks.Acquire(ctx, "k", time.Minute)
	assert.NoError(t, err)
}
