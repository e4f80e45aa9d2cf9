package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roomdesk/internal/bookings/errors"
	"roomdesk/internal/bookings/selection"
	"roomdesk/internal/resources"
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/config"
	apperrors "roomdesk/pkg/errors"
	"roomdesk/pkg/model"
	"roomdesk/pkg/sanitizer"

	"github.com/google/uuid"
)

const sessionCleanupInterval = time.Minute

// SessionView is the client-facing snapshot of a booking dialog.
type SessionView struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Resource   *model.Resource `json:"resource,omitempty"`
	Selection  selection.State `json:"selection"`
	InviteText string          `json:"invite_text"`
	Invitees   []string        `json:"invitees"`
	Grid       grid.Grid       `json:"grid"`
}

// ClickResult is a machine outcome plus the resulting session snapshot.
type ClickResult struct {
	Outcome selection.Outcome `json:"outcome"`
	Booking *model.Booking    `json:"booking,omitempty"`
	Session SessionView       `json:"session"`
}

type SessionService interface {
	Open(ctx context.Context, date string, resource *model.Resource) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Click(ctx context.Context, id string, slot grid.TimeOfDay) (*ClickResult, error)
	SetResource(ctx context.Context, id string, resource *model.Resource) (*SessionView, error)
	SetInviteText(ctx context.Context, id, text string) (*SessionView, error)
	AddInvitee(ctx context.Context, id, invitee string) (*SessionView, error)
	Commit(ctx context.Context, id string, form model.BookingForm) (*model.Booking, error)
	Close(ctx context.Context, id string) error
	Stop()
}

type session struct {
	mu         sync.Mutex
	id         string
	machine    *selection.Machine
	inviteText string
	invitees   []string
	lastSeen   time.Time
	closed     bool
}

func (s *session) view() SessionView {
	v := SessionView{
		ID:         s.id,
		Date:       s.machine.Date(),
		Selection:  s.machine.State(),
		InviteText: s.inviteText,
		Invitees:   append([]string{}, s.invitees...),
		Grid:       s.machine.Grid(),
	}
	if res := s.machine.Resource(); !res.IsZero() {
		v.Resource = &res
	}
	return v
}

type sessionService struct {
	bookings BookingService
	catalog  *resources.Catalog
	cfg      *config.Config

	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionService starts an in-memory session store whose idle sessions
// expire after cfg.SessionTTL. Call Stop to end the cleanup goroutine.
func NewSessionService(bookings BookingService, catalog *resources.Catalog, cfg *config.Config) SessionService {
	s := &sessionService{
		bookings: bookings,
		catalog:  catalog,
		cfg:      cfg,
		sessions: make(map[string]*session),
		ttl:      cfg.SessionTTL,
		stopCh:   make(chan struct{}),
	}

	go s.cleanup()

	return s
}

func (s *sessionService) Open(ctx context.Context, date string, resource *model.Resource) (*SessionView, error) {
	active, err := s.resolveResource(resource)
	if err != nil {
		return nil, err
	}

	idx, err := s.bookings.LoadIndex(ctx, date)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:       uuid.New().String(),
		machine:  selection.NewMachine(date, active, s.bookings.SlotGrid(), idx),
		invitees: []string{},
		lastSeen: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.cfg.Log.Info("Booking session opened", "session_id", sess.id, "date", date, "resource", active)

	v := sess.view()
	return &v, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	var v SessionView
	err := s.withSession(id, func(sess *session) error {
		v = sess.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Click refreshes the day's bookings before delegating to the selection
// machine, so commits from other sessions are visible immediately.
func (s *sessionService) Click(ctx context.Context, id string, slot grid.TimeOfDay) (*ClickResult, error) {
	var result ClickResult
	err := s.withSession(id, func(sess *session) error {
		idx, err := s.bookings.LoadIndex(ctx, sess.machine.Date())
		if err != nil {
			return err
		}
		sess.machine.SetChecker(idx)

		res, err := sess.machine.Click(slot)
		if err != nil {
			var conflict *bookingserrors.ConflictError
			if errors.As(err, &conflict) {
				return ConflictError(conflict)
			}
			if errors.Is(err, bookingserrors.ErrSlotNotOnGrid) {
				return apperrors.InvalidInput("Slot " + slot.String() + " is not on the booking grid").WithCause(err)
			}
			return apperrors.Internal("Failed to process slot click", err)
		}

		result = ClickResult{Outcome: res.Outcome, Booking: res.Booking, Session: sess.view()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetResource switches the active room. An existing range is kept as is and
// checked again on the next click or at commit.
func (s *sessionService) SetResource(ctx context.Context, id string, resource *model.Resource) (*SessionView, error) {
	active, err := s.resolveResource(resource)
	if err != nil {
		return nil, err
	}

	var v SessionView
	err = s.withSession(id, func(sess *session) error {
		sess.machine.SetResource(active)
		v = sess.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *sessionService) SetInviteText(ctx context.Context, id, text string) (*SessionView, error) {
	var v SessionView
	err := s.withSession(id, func(sess *session) error {
		sess.inviteText = text
		v = sess.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *sessionService) AddInvitee(ctx context.Context, id, invitee string) (*SessionView, error) {
	normalized := sanitizer.NormalizeInvitee(invitee)
	if normalized == "" {
		return nil, apperrors.InvalidInput("Invitee cannot be empty")
	}

	var v SessionView
	err := s.withSession(id, func(sess *session) error {
		sess.invitees = sanitizer.NormalizeInvitees(append(sess.invitees, normalized))
		v = sess.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Commit books the session's selected range. The session's resource fills an
// empty form resource, and the invite text and added invitees are merged into
// the form. On success the session is reset and closed.
func (s *sessionService) Commit(ctx context.Context, id string, form model.BookingForm) (*model.Booking, error) {
	var booking *model.Booking
	err := s.withSession(id, func(sess *session) error {
		if form.Method == model.MethodOffice && form.Branch == "" && form.Room == "" {
			res := sess.machine.Resource()
			form.Branch, form.Room = res.Branch, res.Room
		}
		invitees := append([]string{}, form.Invitees...)
		invitees = append(invitees, sess.invitees...)
		invitees = append(invitees, sanitizer.SplitInviteText(sess.inviteText)...)
		form.Invitees = sanitizer.NormalizeInvitees(invitees)

		b, err := s.bookings.Commit(ctx, CommitRequest{
			Date:      sess.machine.Date(),
			Selection: sess.machine.State(),
			Form:      form,
		})
		if err != nil {
			return err
		}

		sess.machine.Reset()
		sess.inviteText = ""
		sess.invitees = []string{}
		sess.closed = true
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.remove(id)
	s.cfg.Log.Info("Booking session committed", "session_id", id, "booking_id", booking.ID)
	return booking, nil
}

func (s *sessionService) Close(ctx context.Context, id string) error {
	err := s.withSession(id, func(sess *session) error {
		sess.machine.Reset()
		sess.inviteText = ""
		sess.invitees = nil
		sess.closed = true
		return nil
	})
	if err != nil {
		return err
	}

	s.remove(id)
	s.cfg.Log.Info("Booking session closed", "session_id", id)
	return nil
}

func (s *sessionService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// --- Helpers ---

// withSession runs fn holding the session's mutex, so events of one session
// are applied strictly in order.
func (s *sessionService) withSession(id string, fn func(sess *session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return apperrors.NotFoundWithID("Session", id).WithCause(bookingserrors.ErrSessionNotFound)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return apperrors.NotFoundWithID("Session", id).WithCause(bookingserrors.ErrSessionClosed)
	}
	sess.lastSeen = time.Now()
	return fn(sess)
}

func (s *sessionService) resolveResource(resource *model.Resource) (model.Resource, error) {
	if resource == nil || resource.IsZero() {
		return model.Resource{}, nil
	}
	if !s.catalog.Exists(*resource) {
		return model.Resource{}, fieldError("room", fmt.Errorf("%w: %s", bookingserrors.ErrUnknownResource, resource))
	}
	return *resource, nil
}

func (s *sessionService) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *sessionService) cleanup() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *sessionService) evictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.closed = true
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	if evicted > 0 {
		s.cfg.Log.Debug("Expired booking sessions evicted", "count", evicted)
	}
	return evicted
}
