package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomdesk/internal/bookings/availability"
	bookingserrors "roomdesk/internal/bookings/errors"
	"roomdesk/internal/bookings/events"
	"roomdesk/internal/bookings/repository"
	"roomdesk/internal/bookings/selection"
	"roomdesk/internal/bookings/validator"
	"roomdesk/internal/resources"
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/config"
	apperrors "roomdesk/pkg/errors"
	"roomdesk/pkg/model"
	"roomdesk/pkg/sanitizer"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// CommitRequest is a selected range plus the dialog form for one day.
type CommitRequest struct {
	Date      string
	Selection selection.State
	Form      model.BookingForm
}

// SlotStatus is one grid slot of a resource, with the owning booking if any.
type SlotStatus struct {
	Slot      grid.TimeOfDay `json:"slot"`
	BookingID string         `json:"booking_id,omitempty"`
}

type ResourceOccupancy struct {
	Branch string       `json:"branch"`
	Room   string       `json:"room"`
	Slots  []SlotStatus `json:"slots"`
}

// DayGrid is the grid of one date with per-resource occupancy for rendering.
type DayGrid struct {
	Date      string              `json:"date"`
	Grid      grid.Grid           `json:"grid"`
	Resources []ResourceOccupancy `json:"resources"`
}

type BookingService interface {
	Commit(ctx context.Context, req CommitRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByDate(ctx context.Context, date string) ([]*model.Booking, error)
	Grid(ctx context.Context, date string) (*DayGrid, error)
	LoadIndex(ctx context.Context, date string) (*availability.Index, error)
	SlotGrid() grid.Grid
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	catalog   *resources.Catalog
	grid      grid.Grid
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	catalog *resources.Catalog,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		publisher: publisher,
		catalog:   catalog,
		grid:      cfg.Grid(),
		cfg:       cfg,
	}
}

func (s *bookingService) SlotGrid() grid.Grid {
	return s.grid
}

// Commit turns a selected range into a stored booking. Office bookings are
// re-checked for overlaps under a per-(date, resource) lock so that two
// sessions racing for the same range cannot both succeed.
func (s *bookingService) Commit(ctx context.Context, req CommitRequest) (*model.Booking, error) {
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if !req.Selection.IsRange() {
		return nil, fieldError("selection", bookingserrors.ErrNoRangeSelected)
	}

	form := s.sanitizeForm(req.Form)
	if err := s.validator.ValidateForm(&form); err != nil {
		s.cfg.Log.Warn("Booking form validation failed", "date", req.Date, "error", err)
		return nil, validationError(err)
	}

	start := req.Selection.Start
	end, ok := s.grid.EndOf(req.Selection.End)
	if !s.grid.Contains(start) || !ok {
		return nil, apperrors.InvalidInput(bookingserrors.ErrSlotNotOnGrid.Error()).WithCause(bookingserrors.ErrSlotNotOnGrid)
	}

	booking := &model.Booking{
		ID:        uuid.New().String(),
		Organizer: form.Organizer,
		Title:     form.Title,
		Date:      req.Date,
		Start:     start,
		End:       end,
		Invitees:  form.Invitees,
		Method:    form.Method,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if booking.IsOffice() {
		booking.Branch, booking.Room = form.Branch, form.Room
	} else {
		booking.Link = form.Link
	}
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "date", req.Date, "error", err)
		return nil, validationError(err)
	}

	if err := s.store(ctx, booking); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking committed successfully",
		"booking_id", booking.ID,
		"date", booking.Date,
		"start", booking.Start,
		"end", booking.End,
		"method", booking.Method,
		"resource", booking.Resource(),
	)

	if err := s.publisher.BookingCreated(context.WithoutCancel(ctx), booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "booking_id", booking.ID, "error", err)
	}

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) LoadIndex(ctx context.Context, date string) (*availability.Index, error) {
	bookings, err := s.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return availability.NewIndex(date, bookings), nil
}

func (s *bookingService) Grid(ctx context.Context, date string) (*DayGrid, error) {
	idx, err := s.LoadIndex(ctx, date)
	if err != nil {
		return nil, err
	}

	day := &DayGrid{Date: date, Grid: s.grid}
	for _, res := range s.catalog.Resources() {
		occ := ResourceOccupancy{Branch: res.Branch, Room: res.Room, Slots: make([]SlotStatus, 0, s.grid.Len())}
		for _, slot := range s.grid.Slots {
			status := SlotStatus{Slot: slot}
			if b := idx.FindBookingForSlot(date, slot, res); b != nil {
				status.BookingID = b.ID
			}
			occ.Slots = append(occ.Slots, status)
		}
		day.Resources = append(day.Resources, occ)
	}
	return day, nil
}

// --- Helpers ---

// store inserts booking inside a transaction. Office bookings hold the room
// lock from the overlap recheck until the insert returns.
func (s *bookingService) store(ctx context.Context, booking *model.Booking) error {
	if booking.IsOffice() {
		lock, err := s.acquireLock(ctx, booking.Date, booking.Resource())
		if err != nil {
			return err
		}
		defer func() {
			if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), lock); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", releaseErr)
			}
		}()
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if booking.IsOffice() {
			if err := s.verifyNoOverlap(txCtx, booking); err != nil {
				return err
			}
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil && apperrors.AsAppError(err).Code == apperrors.CodeInternal {
		s.cfg.Log.Error("Failed to commit booking", "date", booking.Date, "error", err)
	}
	return err
}

func (s *bookingService) sanitizeForm(f model.BookingForm) model.BookingForm {
	f.Organizer = sanitizer.TrimAndNormalize(f.Organizer)
	f.Title = sanitizer.TrimAndNormalize(f.Title)
	f.Branch = sanitizer.TrimAndNormalize(f.Branch)
	f.Room = sanitizer.TrimAndNormalize(f.Room)
	f.Invitees = sanitizer.NormalizeInvitees(f.Invitees)
	if f.Link != "" {
		if link := sanitizer.NormalizeLink(f.Link); link != "" {
			f.Link = link
		}
	}
	return f
}

func (s *bookingService) acquireLock(ctx context.Context, date string, resource model.Resource) (*model.BookingLock, error) {
	lock, err := s.lockRepo.Acquire(ctx, repository.LockKey(date, resource), s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSlotLocked) {
			return nil, apperrors.Conflict("This room is currently being booked by another request. Please try again.").
				WithCause(err)
		}
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lock, nil
}

func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindByDateAndResource(ctx, booking.Date, booking.Resource())
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	if b := availability.FirstOverlap(existing, booking.Date, booking.Resource(), booking.Start, booking.End); b != nil {
		return ConflictError(&bookingserrors.ConflictError{Booking: b})
	}
	return nil
}

// ConflictError maps an overlap onto a 409 carrying the conflicting booking.
func ConflictError(conflict *bookingserrors.ConflictError) *apperrors.AppError {
	details := map[string]any{}
	if conflict.Booking != nil {
		details["booking"] = conflict.Booking
	}
	return apperrors.Conflict(fmt.Sprintf("Selected range overlaps an existing booking: %s", conflict.Error())).
		WithDetails(details).
		WithCause(conflict)
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", date))
	}
	return nil
}

func fieldError(field string, cause error) *apperrors.AppError {
	return validationError(validator.ValidationErrors{
		validator.ValidationError{Field: field, Message: cause.Error()},
	}).WithCause(cause)
}

func validationError(err error) *apperrors.AppError {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return apperrors.Validation("Booking validation failed", map[string]any{"fields": fields}).WithCause(err)
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()}).WithCause(err)
}
