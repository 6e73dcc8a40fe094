package service_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/family"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// ---- fake remote -----------------------------------------------------------

// fakeRemote is an in-memory tripstore.Remote. Set fetchErr or putErr to make
// the corresponding calls fail. A non-nil gate holds every FetchAll until it
// is closed.
type fakeRemote struct {
	mu       sync.Mutex
	events   map[string]domain.Event
	rsvps    map[string]map[string]domain.RSVPStatus
	meals    map[string]bool // day|slot|person
	profiles map[string]domain.Profile
	fetches  int
	fetchErr error
	putErr   error
	gate     chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		events:   map[string]domain.Event{},
		rsvps:    map[string]map[string]domain.RSVPStatus{},
		meals:    map[string]bool{},
		profiles: map[string]domain.Profile{},
	}
}

var _ tripstore.Remote = (*fakeRemote)(nil)

func mealKey(day string, slot domain.MealSlot, person string) string {
	return day + "|" + string(slot) + "|" + person
}

func (f *fakeRemote) FetchAll(_ context.Context, roster config.Roster) (tripstore.Snapshot, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return tripstore.Snapshot{}, f.fetchErr
	}

	snap := tripstore.EmptySnapshot(roster)
	for _, e := range f.events {
		e = e.Clone()
		e.RSVP = make(map[string]domain.RSVPStatus, len(roster.Participants))
		for _, p := range roster.Participants {
			e.RSVP[p] = domain.RSVPPending
		}
		for p, s := range f.rsvps[e.ID] {
			e.RSVP[p] = s
		}
		snap.Events = append(snap.Events, e)
	}
	sort.Slice(snap.Events, func(i, j int) bool { return snap.Events[i].SortKey() < snap.Events[j].SortKey() })
	for _, day := range roster.TripDays {
		for _, slot := range domain.MealSlots {
			for _, p := range roster.Participants {
				snap.Meals[day][slot][p] = f.meals[mealKey(day, slot, p)]
			}
		}
	}
	for p, prof := range f.profiles {
		snap.Profiles[p] = prof.Clone()
	}
	return snap, nil
}

func (f *fakeRemote) PutRSVPs(_ context.Context, eventID string, people []string, status domain.RSVPStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if f.rsvps[eventID] == nil {
		f.rsvps[eventID] = map[string]domain.RSVPStatus{}
	}
	for _, p := range people {
		f.rsvps[eventID][p] = status
	}
	return nil
}

func (f *fakeRemote) PutMeals(_ context.Context, day string, slot domain.MealSlot, people []string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	for _, p := range people {
		f.meals[mealKey(day, slot, p)] = enabled
	}
	return nil
}

func (f *fakeRemote) PutProfile(_ context.Context, person string, profile domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.profiles[person] = profile.Clone()
	return nil
}

func (f *fakeRemote) PutEvent(_ context.Context, e domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	e = e.Clone()
	e.RSVP = nil
	f.events[e.ID] = e
	return nil
}

func (f *fakeRemote) RemoveEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	delete(f.rsvps, id)
	return nil
}

func (f *fakeRemote) addEvent(e domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = e
}

func (f *fakeRemote) rsvp(eventID, person string) domain.RSVPStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rsvps[eventID][person]
}

func (f *fakeRemote) holdFetches() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// ---- helpers ---------------------------------------------------------------

func testRoster() config.Roster {
	return config.Roster{
		TripDays:     []string{"2026-09-01", "2026-09-02"},
		Participants: []string{"Marco", "Benno", "Lx", "Emil", "Karli", "Chris"},
		Guardians: []config.Guardianship{
			{Child: "Emil", Guardians: []string{"Benno", "Lx"}},
			{Child: "Karli", Guardians: []string{"Benno", "Lx"}},
		},
	}
}

// newPlanner returns a Planner over remote that polls rarely enough for
// tests to control every reload themselves.
func newPlanner(t *testing.T, remote tripstore.Remote) *service.Planner {
	t.Helper()
	return newPlannerWithInterval(t, remote, time.Hour)
}

func newPlannerWithInterval(t *testing.T, remote tripstore.Remote, interval time.Duration) *service.Planner {
	t.Helper()
	roster := testRoster()
	p := service.NewPlanner(remote, roster, family.NewResolver(roster.Guardians), service.PlannerOptions{
		AdminName:      "Marco",
		AdminPIN:       "4040",
		PollInterval:   interval,
		PersistTimeout: time.Second,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(p.Shutdown)
	return p
}

// loginLoaded logs user in and waits until the first load has been applied.
func loginLoaded(t *testing.T, p *service.Planner, remote *fakeRemote, user string) {
	t.Helper()
	before := remote.fetchCount()
	_, err := p.Login(user)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st, err := p.Status(user)
		return err == nil && remote.fetchCount() > before && st.Phase == tripstore.PhaseReady
	}, time.Second, time.Millisecond)
}

func ptr[T any](v T) *T { return &v }
