package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"roomdesk/internal/bookings/repository"
	"roomdesk/internal/bookings/validator"
	"roomdesk/internal/resources"
	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/config"
	"roomdesk/pkg/logger"
	"roomdesk/pkg/model"

	"github.com/stretchr/testify/require"
)

const testDate = "2025-12-05"

var (
	hcmRoom01 = model.Resource{Branch: "Ho Chi Minh", Room: "Room 01"}
	hcmRoom02 = model.Resource{Branch: "Ho Chi Minh", Room: "Room 02"}
)

type recordingPublisher struct {
	mu      sync.Mutex
	events  []*model.Booking
	ctxErrs []error
	err     error

	// When set, BookingCreated signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (p *recordingPublisher) BookingCreated(ctx context.Context, b *model.Booking) error {
	if p.release != nil {
		p.entered <- struct{}{}
		<-p.release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, b)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	cfg       *config.Config
	repo      repository.BookingRepository
	publisher *recordingPublisher
	bookings  BookingService
	catalog   *resources.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.FromEnv("bookings-test")
	cfg.Log = logger.New(logger.Config{Output: io.Discard})
	cfg.WorkingHoursStart = config.DefaultWorkingHoursStart
	cfg.WorkingHoursEnd = config.DefaultWorkingHoursEnd
	cfg.SlotGranularity = config.DefaultSlotGranularity
	cfg.LockTTL = config.DefaultLockTTL
	cfg.SessionTTL = config.DefaultSessionTTL

	catalog, err := resources.Parse(config.DefaultBranchRooms)
	require.NoError(t, err)

	repo := repository.NewMemoryBookingRepository()
	publisher := &recordingPublisher{}
	svc := NewBookingService(
		repo,
		repository.NewMemoryBookingLockRepository(),
		validator.NewBookingValidator(cfg.Log, catalog),
		publisher,
		catalog,
		cfg,
	)

	return &fixture{cfg: cfg, repo: repo, publisher: publisher, bookings: svc, catalog: catalog}
}

func (f *fixture) seed(t *testing.T, resource model.Resource, start, end string) *model.Booking {
	t.Helper()
	b := &model.Booking{
		ID:        "seed-" + start + "-" + resource.Room,
		Organizer: "Seeder",
		Date:      testDate,
		Start:     grid.MustParse(start),
		End:       grid.MustParse(end),
		Method:    model.MethodOffice,
		Branch:    resource.Branch,
		Room:      resource.Room,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func officeForm(resource model.Resource) model.BookingForm {
	return model.BookingForm{
		Organizer: "Linh Tran",
		Title:     "Sprint planning",
		Method:    model.MethodOffice,
		Branch:    resource.Branch,
		Room:      resource.Room,
	}
}
