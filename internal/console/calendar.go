package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"industry-console/internal/api"
	"industry-console/internal/calendar"
	"industry-console/internal/model"
)

// monthLimit caps how many appointments one month fetch asks for.
const monthLimit = 500

type CalendarAPI interface {
	ListAppointments(ctx context.Context, q api.AppointmentQuery) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error)
	ListStaff(ctx context.Context, activeOnly bool) ([]model.Staff, error)
	ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error)
}

// CellView is a grid cell ready for display.
type CellView struct {
	calendar.DayCell
	Today    bool
	Selected bool
	Shown    []model.Appointment
	More     int
}

// CalendarSession is the month view of the booking calendar. Month and
// filter changes refetch appointments; only the newest fetch may commit.
type CalendarSession struct {
	api    CalendarAPI
	log    *zap.Logger
	notify Notifier
	now    func() time.Time

	mu       sync.Mutex
	month    time.Time
	staffID  string
	selected time.Time
	appts    []model.Appointment
	staff    []model.Staff
	services []model.Service
	form     model.BookingRequest
	gen      uint64
	loading  bool
}

type CalendarOption func(*CalendarSession)

// WithClock overrides the wall clock used for "today".
func WithClock(now func() time.Time) CalendarOption {
	return func(s *CalendarSession) { s.now = now }
}

func WithNotifier(n Notifier) CalendarOption {
	return func(s *CalendarSession) { s.notify = n }
}

func NewCalendarSession(a CalendarAPI, log *zap.Logger, opts ...CalendarOption) *CalendarSession {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CalendarSession{api: a, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.notify == nil {
		s.notify = LogNotifier{Log: log}
	}
	s.month = calendar.MonthStart(s.now())
	return s
}

// Open loads staff and services side by side, then the current month.
// Lookup failures leave the dropdowns empty.
func (s *CalendarSession) Open(ctx context.Context) {
	var staff []model.Staff
	var services []model.Service

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		staff, err = s.api.ListStaff(gctx, true)
		if err != nil {
			s.log.Warn("load staff", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		services, err = s.api.ListServices(gctx, true)
		if err != nil {
			s.log.Warn("load services", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.staff = staff
	s.services = services
	s.mu.Unlock()

	s.Refresh(ctx)
}

// Refresh fetches the displayed month. It reports false when the response
// was superseded by a later navigation and therefore discarded.
func (s *CalendarSession) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	s.gen++
	tok := s.gen
	first, last := calendar.MonthRange(s.month)
	q := api.AppointmentQuery{
		StartDate: first.Format(calendar.DateLayout),
		EndDate:   last.Format(calendar.DateLayout),
		StaffID:   s.staffID,
		Limit:     monthLimit,
	}
	s.loading = true
	s.mu.Unlock()

	appts, err := s.api.ListAppointments(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.gen {
		s.log.Debug("dropping stale appointments", zap.String("start", q.StartDate))
		return false
	}
	s.loading = false
	if err != nil {
		s.log.Warn("load appointments", zap.String("start", q.StartDate), zap.Error(err))
		appts = nil
	}
	s.appts = appts
	return true
}

// Navigate shows the month containing t.
func (s *CalendarSession) Navigate(ctx context.Context, t time.Time) bool {
	s.mu.Lock()
	s.month = calendar.MonthStart(t)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *CalendarSession) Next(ctx context.Context) bool { return s.step(ctx, 1) }

func (s *CalendarSession) Prev(ctx context.Context) bool { return s.step(ctx, -1) }

func (s *CalendarSession) step(ctx context.Context, months int) bool {
	s.mu.Lock()
	s.month = s.month.AddDate(0, months, 0)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// SetStaffFilter limits the month to one staff member; "" shows everyone.
func (s *CalendarSession) SetStaffFilter(ctx context.Context, staffID string) bool {
	s.mu.Lock()
	s.staffID = staffID
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *CalendarSession) Month() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

func (s *CalendarSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *CalendarSession) Staff() []model.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staff
}

func (s *CalendarSession) Services() []model.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.services
}

func (s *CalendarSession) Appointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appts
}

// Cells builds the 42-cell grid for the displayed month. The grid and the
// today marker are derived again on every call.
func (s *CalendarSession) Cells() []CellView {
	s.mu.Lock()
	grid := calendar.MonthGrid(s.month)
	byDay := calendar.Bucket(grid, s.appts)
	selected := ""
	if !s.selected.IsZero() {
		selected = s.selected.Format(calendar.DateLayout)
	}
	s.mu.Unlock()

	now := s.now()
	out := make([]CellView, len(grid))
	for i, c := range grid {
		shown, more := calendar.Preview(byDay[c.Key()], calendar.PreviewLimit)
		out[i] = CellView{
			DayCell:  c,
			Today:    calendar.IsToday(c, now),
			Selected: c.Key() == selected,
			Shown:    shown,
			More:     more,
		}
	}
	return out
}

// SelectDay highlights date and anchors the booking form to it.
func (s *CalendarSession) SelectDay(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = date
	s.form.AppointmentDate = date.Format(calendar.DateLayout)
}

func (s *CalendarSession) Selected() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, !s.selected.IsZero()
}

// SelectedAppointments lists every appointment on the selected day.
func (s *CalendarSession) SelectedAppointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected.IsZero() {
		return nil
	}
	cell := calendar.DayCell{Date: s.selected}
	return calendar.Bucket([]calendar.DayCell{cell}, s.appts)[cell.Key()]
}

func (s *CalendarSession) Form() model.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *CalendarSession) SetForm(f model.BookingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// CreateBooking submits the current form. On success the form is cleared
// except for its date and the month is refetched; on failure the form is
// kept for another attempt.
func (s *CalendarSession) CreateBooking(ctx context.Context) (*model.Appointment, error) {
	form := s.Form()
	if err := form.Validate(); err != nil {
		s.notify.Notify(Notification{Level: LevelError, Message: "Please fill in all required fields: " + err.Error()})
		return nil, err
	}

	appt, err := s.api.CreateAppointment(ctx, form)
	if err != nil {
		s.log.Error("create booking", zap.String("date", form.AppointmentDate), zap.Error(err))
		s.notify.Notify(Notification{Level: LevelError, Message: "Failed to create booking"})
		return nil, err
	}

	s.mu.Lock()
	s.form = model.BookingRequest{AppointmentDate: form.AppointmentDate}
	s.mu.Unlock()
	s.notify.Notify(Notification{Level: LevelSuccess, Message: "Booking created"})

	s.Refresh(ctx)
	return appt, nil
}
