package console_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry-console/internal/api"
	"industry-console/internal/cms"
	"industry-console/internal/console"
	"industry-console/internal/model"
)

type recorder struct {
	mu  sync.Mutex
	got []console.Notification
}

func (r *recorder) Notify(n console.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) last() console.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[len(r.got)-1]
}

// ----- editor -----

type fakeSettings struct {
	mu      sync.Mutex
	docs    map[string]string
	getErr  error
	saveErr error
	saved   []cms.Document
	keys    []string
	gate    map[string]chan struct{}
	entered chan string

	saveGate    chan struct{}
	saveEntered chan string
}

func (f *fakeSettings) GetSettings(ctx context.Context, industry string) (json.RawMessage, error) {
	f.mu.Lock()
	gate := f.gate[industry]
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- industry
	}
	if gate != nil {
		<-gate
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	if s, ok := f.docs[industry]; ok {
		return json.RawMessage(s), nil
	}
	return nil, nil
}

func (f *fakeSettings) SaveSettings(ctx context.Context, industry string, doc cms.Document, key string) error {
	if f.saveEntered != nil {
		f.saveEntered <- key
	}
	if f.saveGate != nil {
		<-f.saveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, doc)
	f.keys = append(f.keys, key)
	return nil
}

func TestEditorLoadMergesOverDefaults(t *testing.T) {
	f := &fakeSettings{docs: map[string]string{
		"legal": `{"hero":{"title":"Firm"},"faqs":[{"question":"q"}]}`,
	}}
	s := console.NewEditorSession(f, "legal", nil, nil)

	assert.True(t, s.Load(context.Background()))
	doc := s.Document()
	assert.Equal(t, "Firm", doc.Hero.Title())
	assert.Len(t, doc.Items("faqs"), 1)
	assert.Contains(t, doc.Lists, "practice_areas")
}

func TestEditorLoadFailureKeepsDefaults(t *testing.T) {
	f := &fakeSettings{getErr: errors.New("connection refused")}
	s := console.NewEditorSession(f, "restaurant", nil, nil)

	assert.False(t, s.Load(context.Background()))
	doc := s.Document()
	assert.Equal(t, cms.Defaults("restaurant").Hero, doc.Hero)
	assert.Contains(t, doc.Lists, "menu")
}

func TestEditorLoadMalformedKeepsDefaults(t *testing.T) {
	f := &fakeSettings{docs: map[string]string{"salon": `[1,2,3]`}}
	s := console.NewEditorSession(f, "salon", nil, nil)
	s.Load(context.Background())
	assert.Contains(t, s.Document().Lists, "faqs")
}

func TestEditorStaleLoadDiscarded(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeSettings{
		docs: map[string]string{
			"legal":      `{"hero":{"title":"Legal"}}`,
			"healthcare": `{"hero":{"title":"Clinic"}}`,
		},
		gate:    map[string]chan struct{}{"legal": gate},
		entered: make(chan string, 2),
	}
	s := console.NewEditorSession(f, "legal", nil, nil)

	done := make(chan bool)
	go func() { done <- s.Load(context.Background()) }()

	// the legal load is in flight when the user switches
	assert.Equal(t, "legal", <-f.entered)
	assert.True(t, s.SwitchIndustry(context.Background(), "healthcare"))

	close(gate)
	assert.False(t, <-done)
	assert.Equal(t, "healthcare", s.Industry())
	assert.Equal(t, "Clinic", s.Document().Hero.Title())
}

func TestEditorSaveSendsDocumentUnchanged(t *testing.T) {
	f := &fakeSettings{docs: map[string]string{
		"salon": `{"hero":{"title":"T","image":"x.png"},"theme":{"dark":true}}`,
	}}
	rec := &recorder{}
	s := console.NewEditorSession(f, "salon", nil, rec)
	s.Load(context.Background())

	s.Edit(func(e *cms.Editor) {
		e.Select("faqs")
		i := e.AddItem("faqs")
		e.SetField("faqs", i, "question", "Parking?")
	})
	before := s.Document()
	wantJSON, err := json.Marshal(before)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background()))
	require.Len(t, f.saved, 1)
	gotJSON, err := json.Marshal(f.saved[0])
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	// the session state is not altered by saving
	if diff := cmp.Diff(string(wantJSON), mustJSON(t, s.Document())); diff != "" {
		t.Errorf("document changed by save (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, f.keys[0])
	assert.Equal(t, console.LevelSuccess, rec.last().Level)
	assert.False(t, s.Saving())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestEditorSaveFailureKeepsState(t *testing.T) {
	f := &fakeSettings{saveErr: errors.New("500")}
	rec := &recorder{}
	s := console.NewEditorSession(f, "salon", nil, rec)
	s.Edit(func(e *cms.Editor) { e.SetHero("title", "Unsaved") })

	require.Error(t, s.Save(context.Background()))
	assert.Equal(t, "Unsaved", s.Document().Hero.Title())
	assert.Equal(t, console.LevelError, rec.last().Level)
	assert.False(t, s.Saving())
}

func TestEditorSavingWhileInFlight(t *testing.T) {
	f := &fakeSettings{saveGate: make(chan struct{}), saveEntered: make(chan string, 2)}
	s := console.NewEditorSession(f, "salon", nil, nil)
	assert.False(t, s.Saving())

	done := make(chan error, 2)
	go func() { done <- s.Save(context.Background()) }()
	<-f.saveEntered
	assert.True(t, s.Saving())

	// a second save overlaps the first
	go func() { done <- s.Save(context.Background()) }()
	<-f.saveEntered
	assert.True(t, s.Saving())

	f.saveGate <- struct{}{}
	require.NoError(t, <-done)
	assert.True(t, s.Saving(), "one save is still in flight")

	f.saveGate <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, s.Saving())
	assert.Len(t, f.saved, 2)
}

func TestEditorUneditedSaveKeepsHero(t *testing.T) {
	f := &fakeSettings{docs: map[string]string{
		"salon": `{"hero":{"title":2024,"rating":5}}`,
	}}
	s := console.NewEditorSession(f, "salon", nil, nil)
	require.True(t, s.Load(context.Background()))
	require.NoError(t, s.Save(context.Background()))

	require.Len(t, f.saved, 1)
	var got struct {
		Hero json.RawMessage `json:"hero"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, f.saved[0])), &got))
	assert.JSONEq(t, `{"title":2024,"rating":5}`, string(got.Hero))
}

func TestEditorSwitchResetsActiveSection(t *testing.T) {
	s := console.NewEditorSession(&fakeSettings{}, "salon", nil, nil)
	s.Edit(func(e *cms.Editor) { e.Select("faqs") })
	s.SwitchIndustry(context.Background(), "legal")
	s.Edit(func(e *cms.Editor) { assert.Equal(t, cms.HeroSection, e.Active()) })
}

// ----- calendar -----

type fakeCalendar struct {
	mu        sync.Mutex
	appts     []model.Appointment
	queries   []api.AppointmentQuery
	created   []model.BookingRequest
	createErr error
	listErr   error
	gate      map[string]chan struct{}
}

func (f *fakeCalendar) ListAppointments(ctx context.Context, q api.AppointmentQuery) ([]model.Appointment, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate[q.StartDate]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Appointment
	for _, a := range f.appts {
		if a.AppointmentDate >= q.StartDate && a.AppointmentDate <= q.EndDate &&
			(q.StaffID == "" || a.StaffID == q.StaffID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCalendar) CreateAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	a := model.Appointment{
		ID: "new", AppointmentDate: req.AppointmentDate, StartTime: req.StartTime,
		CustomerName: req.CustomerName, ServiceID: req.ServiceID, Status: model.StatusPending,
	}
	f.appts = append(f.appts, a)
	return &a, nil
}

func (f *fakeCalendar) ListStaff(ctx context.Context, active bool) ([]model.Staff, error) {
	return []model.Staff{{ID: "s1", Name: "Ana", IsActive: true}}, nil
}

func (f *fakeCalendar) ListServices(ctx context.Context, active bool) ([]model.Service, error) {
	return nil, errors.New("services down")
}

func march5() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) }

func TestCalendarOpenAndCells(t *testing.T) {
	f := &fakeCalendar{appts: []model.Appointment{
		{ID: "a", AppointmentDate: "2024-03-05", StartTime: "09:00"},
		{ID: "b", AppointmentDate: "2024-03-05", StartTime: "10:00"},
		{ID: "c", AppointmentDate: "2024-03-05", StartTime: "11:00"},
		{ID: "d", AppointmentDate: "2024-03-05", StartTime: "12:00"},
		{ID: "e", AppointmentDate: "2024-03-06", StartTime: "09:00"},
	}}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5))
	s.Open(context.Background())

	assert.Len(t, s.Staff(), 1)
	assert.Empty(t, s.Services())
	require.Len(t, f.queries, 1)
	assert.Equal(t, api.AppointmentQuery{StartDate: "2024-03-01", EndDate: "2024-03-31", Limit: 500}, f.queries[0])

	cells := s.Cells()
	require.Len(t, cells, 42)
	var today []string
	for _, c := range cells {
		if c.Today {
			today = append(today, c.Key())
		}
		switch c.Key() {
		case "2024-03-05":
			assert.Len(t, c.Shown, 3)
			assert.Equal(t, 1, c.More)
		case "2024-03-06":
			assert.Len(t, c.Shown, 1)
		default:
			assert.Empty(t, c.Shown)
		}
	}
	assert.Equal(t, []string{"2024-03-05"}, today)
}

func TestCalendarTodayRecomputed(t *testing.T) {
	now := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	s := console.NewCalendarSession(&fakeCalendar{}, nil, console.WithClock(func() time.Time { return now }))

	find := func() string {
		for _, c := range s.Cells() {
			if c.Today {
				return c.Key()
			}
		}
		return ""
	}
	assert.Equal(t, "2024-03-05", find())
	now = now.Add(2 * time.Minute)
	assert.Equal(t, "2024-03-06", find())
}

func TestCalendarNavigationAndStaffFilter(t *testing.T) {
	f := &fakeCalendar{}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5))
	ctx := context.Background()

	s.Next(ctx)
	s.SetStaffFilter(ctx, "s1")
	s.Prev(ctx)
	s.Navigate(ctx, time.Date(2023, time.February, 20, 0, 0, 0, 0, time.UTC))

	require.Len(t, f.queries, 4)
	assert.Equal(t, "2024-04-01", f.queries[0].StartDate)
	assert.Equal(t, "2024-04-30", f.queries[0].EndDate)
	assert.Equal(t, "s1", f.queries[1].StaffID)
	assert.Equal(t, "2024-03-01", f.queries[2].StartDate)
	assert.Equal(t, "2023-02-28", f.queries[3].EndDate)
}

func TestCalendarStaleMonthDiscarded(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeCalendar{
		appts: []model.Appointment{
			{ID: "mar", AppointmentDate: "2024-03-10"},
			{ID: "apr", AppointmentDate: "2024-04-10"},
		},
		gate: map[string]chan struct{}{"2024-03-01": gate},
	}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5))
	ctx := context.Background()

	done := make(chan bool)
	go func() { done <- s.Refresh(ctx) }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.queries) == 1
	}, time.Second, time.Millisecond)

	assert.True(t, s.Next(ctx))
	close(gate)
	assert.False(t, <-done)

	got := s.Appointments()
	require.Len(t, got, 1)
	assert.Equal(t, "apr", got[0].ID)
}

func TestCalendarListFailureShowsEmptyMonth(t *testing.T) {
	f := &fakeCalendar{listErr: errors.New("timeout")}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5))
	assert.True(t, s.Refresh(context.Background()))
	assert.Empty(t, s.Appointments())
	assert.False(t, s.Loading())
}

func TestCalendarSelectDay(t *testing.T) {
	f := &fakeCalendar{appts: []model.Appointment{
		{ID: "b", AppointmentDate: "2024-03-05", StartTime: "14:00"},
		{ID: "a", AppointmentDate: "2024-03-05", StartTime: "08:00"},
		{ID: "x", AppointmentDate: "2024-03-07"},
	}}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5))
	s.Refresh(context.Background())

	assert.Nil(t, s.SelectedAppointments())
	s.SelectDay(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))

	got := s.SelectedAppointments()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "2024-03-05", s.Form().AppointmentDate)

	selected := 0
	for _, c := range s.Cells() {
		if c.Selected {
			selected++
			assert.Equal(t, "2024-03-05", c.Key())
		}
	}
	assert.Equal(t, 1, selected)
}

func TestCalendarCreateBooking(t *testing.T) {
	f := &fakeCalendar{}
	rec := &recorder{}
	s := console.NewCalendarSession(f, nil, console.WithClock(march5), console.WithNotifier(rec))
	ctx := context.Background()

	s.SelectDay(time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC))
	form := s.Form()
	form.StartTime = "10:30"
	form.ServiceID = "svc"
	form.CustomerName = "Dana"
	s.SetForm(form)

	appt, err := s.CreateBooking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", appt.ID)
	assert.Equal(t, "", f.created[0].StaffID)

	assert.Equal(t, model.BookingRequest{AppointmentDate: "2024-03-12"}, s.Form())
	assert.Equal(t, console.LevelSuccess, rec.last().Level)
	// month refetched after creation
	require.Len(t, s.Appointments(), 1)
}

func TestCalendarCreateBookingValidation(t *testing.T) {
	f := &fakeCalendar{}
	rec := &recorder{}
	s := console.NewCalendarSession(f, nil, console.WithNotifier(rec))

	s.SetForm(model.BookingRequest{AppointmentDate: "2024-03-12", StartTime: "10:00", ServiceID: "svc"})
	_, err := s.CreateBooking(context.Background())
	require.EqualError(t, err, "customer name required")
	assert.Empty(t, f.created)
	assert.Equal(t, console.LevelError, rec.last().Level)
}

func TestCalendarCreateBookingFailureKeepsForm(t *testing.T) {
	f := &fakeCalendar{createErr: errors.New("conflict")}
	s := console.NewCalendarSession(f, nil, console.WithNotifier(&recorder{}))

	form := model.BookingRequest{AppointmentDate: "2024-03-12", StartTime: "10:00", ServiceID: "svc", CustomerName: "Dana", StaffID: "s1"}
	s.SetForm(form)
	_, err := s.CreateBooking(context.Background())
	require.Error(t, err)
	assert.Equal(t, form, s.Form())
}
