package tripstore_test

import (
	"context"
	"sort"
	"sync"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/repo"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// ---- in-memory backend -----------------------------------------------------

// memBackend holds the four tables in memory and implements every repo
// interface, so tests can drive the real Adapter without Postgres.
type memBackend struct {
	mu       sync.Mutex
	events   map[string]domain.Event
	rsvps    map[[2]string]domain.RSVPStatus
	meals    map[[3]string]bool
	profiles map[string]domain.Profile

	mealWrites []domain.MealSignup
	rsvpWrites [][]domain.RSVP

	failMeals  error
	failWrites error
	listHook   func() // called at the start of every event List
}

func newMemBackend() *memBackend {
	return &memBackend{
		events:   map[string]domain.Event{},
		rsvps:    map[[2]string]domain.RSVPStatus{},
		meals:    map[[3]string]bool{},
		profiles: map[string]domain.Profile{},
	}
}

func (b *memBackend) remote() *tripstore.Adapter {
	return tripstore.NewAdapter(memEvents{b}, memRSVPs{b}, memMeals{b}, memProfiles{b})
}

func (b *memBackend) setFailMeals(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMeals = err
}

func (b *memBackend) setFailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites = err
}

func (b *memBackend) meal(day string, slot domain.MealSlot, person string) (bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.meals[[3]string{day, string(slot), person}]
	return v, ok
}

func (b *memBackend) rsvp(eventID, person string) domain.RSVPStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rsvps[[2]string{eventID, person}]
}

func (b *memBackend) mealWriteLog() []domain.MealSignup {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.MealSignup(nil), b.mealWrites...)
}

func (b *memBackend) rsvpWriteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rsvpWrites)
}

type memEvents struct{ b *memBackend }

func (r memEvents) List(_ context.Context) ([]domain.Event, error) {
	r.b.mu.Lock()
	hook := r.b.listHook
	r.b.mu.Unlock()
	if hook != nil {
		hook()
	}
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := make([]domain.Event, 0, len(r.b.events))
	for _, e := range r.b.events {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEvents) Upsert(_ context.Context, e domain.Event) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.failWrites != nil {
		return r.b.failWrites
	}
	e = e.Clone()
	e.RSVP = nil
	r.b.events[e.ID] = e
	return nil
}

func (r memEvents) Delete(_ context.Context, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := r.b.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.b.events, id)
	for k := range r.b.rsvps {
		if k[0] == id {
			delete(r.b.rsvps, k)
		}
	}
	return nil
}

type memRSVPs struct{ b *memBackend }

func (r memRSVPs) ListByEvents(_ context.Context, ids []string) ([]domain.RSVP, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.RSVP
	for k, s := range r.b.rsvps {
		if want[k[0]] {
			out = append(out, domain.RSVP{EventID: k[0], Person: k[1], Status: s})
		}
	}
	return out, nil
}

func (r memRSVPs) UpsertMany(_ context.Context, rows []domain.RSVP) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.failWrites != nil {
		return r.b.failWrites
	}
	r.b.rsvpWrites = append(r.b.rsvpWrites, append([]domain.RSVP(nil), rows...))
	for _, row := range rows {
		r.b.rsvps[[2]string{row.EventID, row.Person}] = row.Status
	}
	return nil
}

type memMeals struct{ b *memBackend }

func (r memMeals) ListByDays(_ context.Context, days []string) ([]domain.MealSignup, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.failMeals != nil {
		return nil, r.b.failMeals
	}
	want := make(map[string]bool, len(days))
	for _, d := range days {
		want[d] = true
	}
	var out []domain.MealSignup
	for k, v := range r.b.meals {
		if want[k[0]] {
			out = append(out, domain.MealSignup{Day: k[0], Slot: domain.MealSlot(k[1]), Person: k[2], Enabled: v})
		}
	}
	return out, nil
}

func (r memMeals) UpsertMany(_ context.Context, rows []domain.MealSignup) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.failWrites != nil {
		return r.b.failWrites
	}
	for _, row := range rows {
		r.b.mealWrites = append(r.b.mealWrites, row)
		r.b.meals[[3]string{row.Day, string(row.Slot), row.Person}] = row.Enabled
	}
	return nil
}

type memProfiles struct{ b *memBackend }

func (r memProfiles) List(_ context.Context) ([]domain.ProfileRow, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := make([]domain.ProfileRow, 0, len(r.b.profiles))
	for person, p := range r.b.profiles {
		out = append(out, domain.ProfileRow{Person: person, Profile: p.Clone()})
	}
	return out, nil
}

func (r memProfiles) Upsert(_ context.Context, row domain.ProfileRow) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if r.b.failWrites != nil {
		return r.b.failWrites
	}
	r.b.profiles[row.Person] = row.Profile.Clone()
	return nil
}

var (
	_ repo.EventRepo   = memEvents{}
	_ repo.RSVPRepo    = memRSVPs{}
	_ repo.MealRepo    = memMeals{}
	_ repo.ProfileRepo = memProfiles{}
)

// ---- helpers ---------------------------------------------------------------

func testRoster() config.Roster {
	return config.Roster{
		TripDays:     []string{"2026-09-01", "2026-09-02"},
		Participants: []string{"Marco", "Benno", "Lx", "Emil", "Karli"},
		Guardians: []config.Guardianship{
			{Child: "Emil", Guardians: []string{"Benno", "Lx"}},
			{Child: "Karli", Guardians: []string{"Benno", "Lx"}},
		},
	}
}

func ptr[T any](v T) *T { return &v }
