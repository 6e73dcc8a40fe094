package tripstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/repo"
)

// Adapter translates between database rows and the store's snapshot shape.
type Adapter struct {
	events   repo.EventRepo
	rsvps    repo.RSVPRepo
	meals    repo.MealRepo
	profiles repo.ProfileRepo
}

// NewAdapter constructs an Adapter over the four table repos.
func NewAdapter(events repo.EventRepo, rsvps repo.RSVPRepo, meals repo.MealRepo, profiles repo.ProfileRepo) *Adapter {
	return &Adapter{events: events, rsvps: rsvps, meals: meals, profiles: profiles}
}

var _ Remote = (*Adapter)(nil)

// FetchAll reads events first, then the RSVPs for exactly those events, then
// the meals of the trip days and finally every profile. Every participant gets
// a default entry (pending, not signed up, empty profile) before stored rows
// are applied.
func (a *Adapter) FetchAll(ctx context.Context, roster config.Roster) (Snapshot, error) {
	events, err := a.events.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("tripstore.Adapter.FetchAll: events: %w", err)
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	var rsvpRows []domain.RSVP
	if len(ids) > 0 {
		rsvpRows, err = a.rsvps.ListByEvents(ctx, ids)
		if err != nil {
			return Snapshot{}, fmt.Errorf("tripstore.Adapter.FetchAll: rsvps: %w", err)
		}
	}

	mealRows, err := a.meals.ListByDays(ctx, roster.TripDays)
	if err != nil {
		return Snapshot{}, fmt.Errorf("tripstore.Adapter.FetchAll: meals: %w", err)
	}

	profileRows, err := a.profiles.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("tripstore.Adapter.FetchAll: profiles: %w", err)
	}

	return assemble(roster, events, rsvpRows, mealRows, profileRows), nil
}

// assemble builds a snapshot from fetched rows.
func assemble(roster config.Roster, events []domain.Event, rsvps []domain.RSVP, meals []domain.MealSignup, profiles []domain.ProfileRow) Snapshot {
	snap := EmptySnapshot(roster)

	byID := make(map[string]int, len(events))
	snap.Events = make([]domain.Event, len(events))
	for i, e := range events {
		e = e.Clone()
		e.RSVP = emptyRSVP(roster.Participants)
		snap.Events[i] = e
		byID[e.ID] = i
	}
	for _, row := range rsvps {
		i, ok := byID[row.EventID]
		if !ok {
			continue
		}
		status := domain.RSVPNo
		if row.Status == domain.RSVPYes {
			status = domain.RSVPYes
		}
		snap.Events[i].RSVP[row.Person] = status
	}
	sort.SliceStable(snap.Events, func(i, j int) bool {
		return snap.Events[i].SortKey() < snap.Events[j].SortKey()
	})

	for _, row := range meals {
		slots, ok := snap.Meals[row.Day]
		if !ok {
			continue
		}
		people, ok := slots[row.Slot]
		if !ok {
			continue
		}
		people[row.Person] = row.Enabled
	}

	for _, row := range profiles {
		snap.Profiles[row.Person] = row.Profile.Clone()
	}

	return snap
}

// PutRSVPs stores status for every person on one event in one batch.
func (a *Adapter) PutRSVPs(ctx context.Context, eventID string, people []string, status domain.RSVPStatus) error {
	rows := make([]domain.RSVP, len(people))
	for i, p := range people {
		rows[i] = domain.RSVP{EventID: eventID, Person: p, Status: status}
	}
	if err := a.rsvps.UpsertMany(ctx, rows); err != nil {
		return fmt.Errorf("tripstore.Adapter.PutRSVPs: %w", err)
	}
	return nil
}

// PutMeals stores the same flag for every person on one day and slot in one batch.
func (a *Adapter) PutMeals(ctx context.Context, day string, slot domain.MealSlot, people []string, enabled bool) error {
	rows := make([]domain.MealSignup, len(people))
	for i, p := range people {
		rows[i] = domain.MealSignup{Day: day, Slot: slot, Person: p, Enabled: enabled}
	}
	if err := a.meals.UpsertMany(ctx, rows); err != nil {
		return fmt.Errorf("tripstore.Adapter.PutMeals: %w", err)
	}
	return nil
}

// PutProfile stores the whole profile of person.
func (a *Adapter) PutProfile(ctx context.Context, person string, profile domain.Profile) error {
	if err := a.profiles.Upsert(ctx, domain.ProfileRow{Person: person, Profile: profile}); err != nil {
		return fmt.Errorf("tripstore.Adapter.PutProfile: %w", err)
	}
	return nil
}

// PutEvent stores the event fields. RSVPs on the event are ignored.
func (a *Adapter) PutEvent(ctx context.Context, event domain.Event) error {
	if err := a.events.Upsert(ctx, event); err != nil {
		return fmt.Errorf("tripstore.Adapter.PutEvent: %w", err)
	}
	return nil
}

// RemoveEvent deletes the event and its RSVPs.
func (a *Adapter) RemoveEvent(ctx context.Context, id string) error {
	if err := a.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("tripstore.Adapter.RemoveEvent: %w", err)
	}
	return nil
}
