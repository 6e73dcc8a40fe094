package tripstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// ErrStopped is returned by Reload when the store has not been started or was
// stopped.
var ErrStopped = errors.New("tripstore: store is not started")

// Phase is the lifecycle state of a Store.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	// PhaseLoading: a reload is in flight and nothing has been loaded yet.
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	// PhaseRefreshing: a reload is in flight over previously loaded data.
	PhaseRefreshing Phase = "refreshing"
)

// Status describes the freshness of the mirror.
type Status struct {
	Phase Phase `json:"phase"`
	// Loaded is set once a reload has succeeded since Start.
	Loaded bool `json:"loaded"`
	// Stale is set when the latest reload failed and the mirror still holds
	// the data of an earlier one.
	Stale        bool      `json:"stale"`
	LastError    string    `json:"last_error,omitempty"`
	LoadedAt     time.Time `json:"loaded_at,omitzero"`
	FailedWrites int64     `json:"failed_writes"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for write and reload failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithPersistTimeout bounds every background write. Defaults to 10s.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) { s.persistTimeout = d }
}

// WithClock replaces time.Now for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the in-memory mirror of the trip data for one session.
// All methods are safe for concurrent use.
type Store struct {
	remote         Remote
	roster         config.Roster
	log            *slog.Logger
	persistTimeout time.Duration
	now            func() time.Time

	mu       sync.Mutex
	gen      uint64 // bumped by Start and Stop; reloads from an older gen are dropped
	phase    Phase
	loaded   bool
	inflight int
	stale    bool
	lastErr  string
	loadedAt time.Time
	mirror   Snapshot

	writes       sync.WaitGroup
	failedWrites atomic.Int64
}

// New constructs an uninitialized Store.
func New(remote Remote, roster config.Roster, opts ...Option) *Store {
	s := &Store{
		remote:         remote,
		roster:         roster,
		log:            slog.Default(),
		persistTimeout: 10 * time.Second,
		now:            time.Now,
		phase:          PhaseUninitialized,
		mirror:         EmptySnapshot(roster),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a session: the mirror is reset and the store waits for its
// first reload in PhaseLoading.
func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.phase = PhaseLoading
	s.resetLocked()
}

// Stop ends the session and discards the mirror. Writes already dispatched
// still complete against the database; reloads still in flight are dropped.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.phase = PhaseUninitialized
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.loaded = false
	s.inflight = 0
	s.stale = false
	s.lastErr = ""
	s.loadedAt = time.Time{}
	s.mirror = EmptySnapshot(s.roster)
}

// Reload fetches everything and replaces the mirror in one step. If any fetch
// fails the mirror is kept unchanged, marked stale, and the error returned.
// Concurrent reloads are allowed; the one that finishes last wins.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseUninitialized {
		s.mu.Unlock()
		return ErrStopped
	}
	gen := s.gen
	if s.loaded {
		s.phase = PhaseRefreshing
	} else {
		s.phase = PhaseLoading
	}
	s.inflight++
	s.mu.Unlock()

	snap, err := s.remote.FetchAll(ctx, s.roster)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug("dropping reload from ended session")
		return ErrStopped
	}
	s.inflight--
	if s.inflight == 0 {
		s.phase = PhaseReady
	}

	if err != nil {
		s.stale = true
		s.lastErr = err.Error()
		s.log.Warn("reload failed, keeping previous data", "error", err)
		return fmt.Errorf("tripstore.Store.Reload: %w", err)
	}

	s.mirror = snap
	s.loaded = true
	s.stale = false
	s.lastErr = ""
	s.loadedAt = s.now()
	return nil
}

// Snapshot returns a deep copy of the mirror.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror.Clone()
}

// Status reports the lifecycle phase and freshness of the mirror.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Phase:        s.phase,
		Loaded:       s.loaded,
		Stale:        s.stale,
		LastError:    s.lastErr,
		LoadedAt:     s.loadedAt,
		FailedWrites: s.failedWrites.Load(),
	}
}

// ExpectedCost is ExpectedCost over the mirror's events.
func (s *Store) ExpectedCost(people []string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ExpectedCost(s.mirror.Events, people)
}

// SetRSVP sets one person's status on an event.
// Capacity is not checked; a full event still accepts yes.
func (s *Store) SetRSVP(eventID, person string, status domain.RSVPStatus) {
	s.SetRSVPMany(eventID, []string{person}, status)
}

// SetRSVPMany sets the same status for every person on one event and
// persists all of them in a single write.
func (s *Store) SetRSVPMany(eventID string, people []string, status domain.RSVPStatus) {
	if len(people) == 0 {
		return
	}
	people = slices.Clone(people)

	s.mu.Lock()
	for i := range s.mirror.Events {
		e := &s.mirror.Events[i]
		if e.ID != eventID {
			continue
		}
		if e.RSVP == nil {
			e.RSVP = make(map[string]domain.RSVPStatus, len(people))
		}
		for _, p := range people {
			e.RSVP[p] = status
		}
	}
	s.mu.Unlock()

	s.persist("set_rsvps", func(ctx context.Context) error {
		return s.remote.PutRSVPs(ctx, eventID, people, status)
	}, "event_id", eventID, "people", people, "status", status)
}

// ToggleMeal flips person's signup for a meal based on the local value and
// returns the new value.
func (s *Store) ToggleMeal(day string, slot domain.MealSlot, person string) bool {
	s.mu.Lock()
	next := !s.mirror.Meals[day][slot][person]
	s.setMealsLocked(day, slot, []string{person}, next)
	s.mu.Unlock()

	s.persist("toggle_meal", func(ctx context.Context) error {
		return s.remote.PutMeals(ctx, day, slot, []string{person}, next)
	}, "day", day, "slot", slot, "person", person, "enabled", next)
	return next
}

// SetMealMany sets the signup flag for every person on one day and slot.
func (s *Store) SetMealMany(day string, slot domain.MealSlot, people []string, value bool) {
	if len(people) == 0 {
		return
	}
	people = slices.Clone(people)

	s.mu.Lock()
	s.setMealsLocked(day, slot, people, value)
	s.mu.Unlock()

	s.persist("set_meals", func(ctx context.Context) error {
		return s.remote.PutMeals(ctx, day, slot, people, value)
	}, "day", day, "slot", slot, "people", people, "enabled", value)
}

func (s *Store) setMealsLocked(day string, slot domain.MealSlot, people []string, value bool) {
	slots, ok := s.mirror.Meals[day]
	if !ok {
		slots = make(map[domain.MealSlot]map[string]bool, len(domain.MealSlots))
		s.mirror.Meals[day] = slots
	}
	signups, ok := slots[slot]
	if !ok {
		signups = make(map[string]bool, len(people))
		slots[slot] = signups
	}
	for _, p := range people {
		signups[p] = value
	}
}

// UpdateProfile merges patch into person's profile, persists the merged
// profile and returns it.
func (s *Store) UpdateProfile(person string, patch domain.ProfilePatch) domain.Profile {
	s.mu.Lock()
	merged := s.mirror.Profiles[person].Apply(patch)
	s.mirror.Profiles[person] = merged
	s.mu.Unlock()

	toStore := merged.Clone()
	s.persist("update_profile", func(ctx context.Context) error {
		return s.remote.PutProfile(ctx, person, toStore)
	}, "person", person)
	return merged.Clone()
}

// UpsertEvent writes the event and then reloads everything. Only the write
// error is returned; a failed reload is recorded in Status.
func (s *Store) UpsertEvent(ctx context.Context, event domain.Event) error {
	if err := s.remote.PutEvent(ctx, event); err != nil {
		s.log.Error("persist failed", "op", "upsert_event", "event_id", event.ID, "error", err)
		return fmt.Errorf("tripstore.Store.UpsertEvent: %w", err)
	}
	s.reloadAfterWrite(ctx)
	return nil
}

// DeleteEvent removes the event and then reloads everything.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := s.remote.RemoveEvent(ctx, id); err != nil {
		s.log.Error("persist failed", "op", "delete_event", "event_id", id, "error", err)
		return fmt.Errorf("tripstore.Store.DeleteEvent: %w", err)
	}
	s.reloadAfterWrite(ctx)
	return nil
}

func (s *Store) reloadAfterWrite(ctx context.Context) {
	if err := s.Reload(ctx); err != nil && !errors.Is(err, ErrStopped) {
		s.log.Warn("reload after event write failed", "error", err)
	}
}

// Wait blocks until every dispatched background write has finished.
func (s *Store) Wait() {
	s.writes.Wait()
}

// persist runs write in the background with its own timeout. Failures are
// logged and counted; the caller never sees them.
func (s *Store) persist(op string, write func(context.Context) error, attrs ...any) {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		if err := write(ctx); err != nil {
			s.failedWrites.Add(1)
			s.log.Error("persist failed", append([]any{"op", op, "error", err}, attrs...)...)
		}
	}()
}
