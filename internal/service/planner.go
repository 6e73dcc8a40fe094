// Package service implements the trip planner's use cases on top of the
// per-session trip stores. It enforces who may act for whom and validates
// command arguments before they reach a store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/family"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// PlannerOptions configures a Planner. Zero durations fall back to 15s polling
// and a 10s write timeout.
type PlannerOptions struct {
	AdminName      string
	AdminPIN       string
	PollInterval   time.Duration
	PersistTimeout time.Duration
	Logger         *slog.Logger
}

// SessionInfo describes a logged-in person.
type SessionInfo struct {
	User string `json:"user"`
	// Managed is the user followed by every child they may act for.
	Managed []string     `json:"managed"`
	Family  family.Group `json:"family"`
	// CanAdmin is true for the one participant allowed to unlock admin mode.
	CanAdmin bool `json:"can_admin"`
}

// session is the state held for one logged-in person.
type session struct {
	store  *tripstore.Store
	poller *tripstore.Poller
}

// Planner owns one trip store and poller per logged-in person.
type Planner struct {
	remote tripstore.Remote
	roster config.Roster
	family *family.Resolver
	opts   PlannerOptions
	log    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	draining sync.WaitGroup // writes of ended sessions
}

// NewPlanner constructs a Planner with no active sessions.
func NewPlanner(remote tripstore.Remote, roster config.Roster, resolver *family.Resolver, opts PlannerOptions) *Planner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 15 * time.Second
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		remote:   remote,
		roster:   roster,
		family:   resolver,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Login starts a session for name. Logging in again discards the previous
// session's mirror and arms a fresh poller. The first load runs in the
// background; Status reports PhaseLoading until it completes.
func (p *Planner) Login(name string) (SessionInfo, error) {
	info, err := p.open(name, true)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("service.Planner.Login: %w", err)
	}
	return info, nil
}

// EnsureSession starts a session for name unless one is already running, in
// which case the existing store and its poller are left untouched.
func (p *Planner) EnsureSession(name string) (SessionInfo, error) {
	info, err := p.open(name, false)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("service.Planner.EnsureSession: %w", err)
	}
	return info, nil
}

// open creates the session and arms its poller under p.mu, so a concurrent
// Logout always finds a poller it can disarm.
func (p *Planner) open(name string, replace bool) (SessionInfo, error) {
	if !p.roster.HasParticipant(name) {
		return SessionInfo{}, fmt.Errorf("%w: unknown participant %q", domain.ErrValidation, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.sessions[name]; ok {
		if !replace {
			return p.info(name), nil
		}
		p.endLocked(old)
	}

	store := tripstore.New(p.remote, p.roster,
		tripstore.WithLogger(p.log.With("user", name)),
		tripstore.WithPersistTimeout(p.opts.PersistTimeout),
	)
	store.Start()
	poller := tripstore.NewPoller(store.Reload, p.opts.PollInterval, p.log.With("user", name))
	p.sessions[name] = &session{store: store, poller: poller}
	poller.Arm()

	p.log.Info("login", "user", name)
	return p.info(name), nil
}

// Logout ends name's session. Unknown names are ignored.
func (p *Planner) Logout(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[name]
	if !ok {
		return
	}
	p.endLocked(s)
	delete(p.sessions, name)
	p.log.Info("logout", "user", name)
}

func (p *Planner) endLocked(s *session) {
	s.poller.Disarm()
	s.store.Stop()
	p.draining.Add(1)
	go func() {
		defer p.draining.Done()
		s.store.Wait()
	}()
}

// Shutdown logs everybody out and waits for every dispatched write.
func (p *Planner) Shutdown() {
	p.mu.Lock()
	for name, s := range p.sessions {
		p.endLocked(s)
		delete(p.sessions, name)
	}
	p.mu.Unlock()
	p.draining.Wait()
}

// Session returns the session information for a logged-in user.
func (p *Planner) Session(user string) (SessionInfo, error) {
	if _, err := p.storeFor(user); err != nil {
		return SessionInfo{}, fmt.Errorf("service.Planner.Session: %w", err)
	}
	return p.info(user), nil
}

func (p *Planner) info(user string) SessionInfo {
	return SessionInfo{
		User:     user,
		Managed:  p.family.ManagedPeople(user),
		Family:   p.family.FamilyGroupForCosts(user),
		CanAdmin: p.opts.AdminName != "" && user == p.opts.AdminName,
	}
}

// LoggedIn reports whether user has an active session.
func (p *Planner) LoggedIn(user string) bool {
	_, err := p.storeFor(user)
	return err == nil
}

func (p *Planner) storeFor(user string) (*tripstore.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[user]
	if !ok {
		return nil, domain.ErrNotLoggedIn
	}
	return s.store, nil
}

// authorize checks that user may act for every one of people.
func (p *Planner) authorize(user string, people []string) error {
	if len(people) == 0 {
		return fmt.Errorf("%w: no people given", domain.ErrValidation)
	}
	for _, person := range people {
		if !p.family.CanActFor(user, person) {
			return fmt.Errorf("%w: %s may not act for %q", domain.ErrForbidden, user, person)
		}
	}
	return nil
}

func (p *Planner) validDaySlot(day string, slot domain.MealSlot) error {
	if !p.roster.HasDay(day) {
		return fmt.Errorf("%w: %q is not a trip day", domain.ErrValidation, day)
	}
	if _, err := domain.ParseMealSlot(string(slot)); err != nil {
		return err
	}
	return nil
}

// ---- commands --------------------------------------------------------------

// SetRSVP records status for every one of people on an event. Only yes and no
// can be set; pending is the absence of a decision. Unknown events are
// rejected once the trip data has been loaded.
func (p *Planner) SetRSVP(user, eventID string, people []string, status domain.RSVPStatus) error {
	store, err := p.storeFor(user)
	if err != nil {
		return fmt.Errorf("service.Planner.SetRSVP: %w", err)
	}
	if _, err := domain.ParseRSVPStatus(string(status)); err != nil {
		return fmt.Errorf("service.Planner.SetRSVP: %w", err)
	}
	people = uniqNames(people)
	if err := p.authorize(user, people); err != nil {
		return fmt.Errorf("service.Planner.SetRSVP: %w", err)
	}
	// Before the first load the mirror has no events to check against; the
	// write goes through and the next reload shows its effect.
	if store.Status().Loaded {
		if _, ok := store.Snapshot().Event(eventID); !ok {
			return fmt.Errorf("service.Planner.SetRSVP: event %q: %w", eventID, domain.ErrNotFound)
		}
	}
	store.SetRSVPMany(eventID, people, status)
	return nil
}

// ToggleMeal flips person's signup for one meal and returns the new value.
func (p *Planner) ToggleMeal(user, day string, slot domain.MealSlot, person string) (bool, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return false, fmt.Errorf("service.Planner.ToggleMeal: %w", err)
	}
	if err := p.validDaySlot(day, slot); err != nil {
		return false, fmt.Errorf("service.Planner.ToggleMeal: %w", err)
	}
	if err := p.authorize(user, []string{person}); err != nil {
		return false, fmt.Errorf("service.Planner.ToggleMeal: %w", err)
	}
	return store.ToggleMeal(day, slot, person), nil
}

// SetMeals sets the signup flag for every one of people on one meal.
func (p *Planner) SetMeals(user, day string, slot domain.MealSlot, people []string, enabled bool) error {
	store, err := p.storeFor(user)
	if err != nil {
		return fmt.Errorf("service.Planner.SetMeals: %w", err)
	}
	if err := p.validDaySlot(day, slot); err != nil {
		return fmt.Errorf("service.Planner.SetMeals: %w", err)
	}
	people = uniqNames(people)
	if err := p.authorize(user, people); err != nil {
		return fmt.Errorf("service.Planner.SetMeals: %w", err)
	}
	store.SetMealMany(day, slot, people, enabled)
	return nil
}

// UpdateProfile merges patch into person's travel details.
func (p *Planner) UpdateProfile(user, person string, patch domain.ProfilePatch) (domain.Profile, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.Planner.UpdateProfile: %w", err)
	}
	if err := p.authorize(user, []string{person}); err != nil {
		return domain.Profile{}, fmt.Errorf("service.Planner.UpdateProfile: %w", err)
	}
	return store.UpdateProfile(person, patch), nil
}

// ---- reads -----------------------------------------------------------------

// Snapshot returns user's current view of the trip.
func (p *Planner) Snapshot(user string) (tripstore.Snapshot, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return tripstore.Snapshot{}, fmt.Errorf("service.Planner.Snapshot: %w", err)
	}
	return store.Snapshot(), nil
}

// Status returns the freshness of user's view.
func (p *Planner) Status(user string) (tripstore.Status, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return tripstore.Status{}, fmt.Errorf("service.Planner.Status: %w", err)
	}
	return store.Status(), nil
}

// Refresh reloads user's view now, independent of the poll schedule.
func (p *Planner) Refresh(ctx context.Context, user string) error {
	store, err := p.storeFor(user)
	if err != nil {
		return fmt.Errorf("service.Planner.Refresh: %w", err)
	}
	if err := store.Reload(ctx); err != nil {
		return fmt.Errorf("service.Planner.Refresh: %w", err)
	}
	return nil
}

func uniqNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
