package tripstore

import (
	"context"
	"slices"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// Remote is the backend the store reads from and writes to.
// Adapter is the production implementation.
type Remote interface {
	// FetchAll reads events, their RSVPs, meals and profiles and assembles them
	// into a complete snapshot. It returns an error and no snapshot if any
	// read fails.
	FetchAll(ctx context.Context, roster config.Roster) (Snapshot, error)

	PutRSVPs(ctx context.Context, eventID string, people []string, status domain.RSVPStatus) error
	PutMeals(ctx context.Context, day string, slot domain.MealSlot, people []string, enabled bool) error
	PutProfile(ctx context.Context, person string, profile domain.Profile) error
	PutEvent(ctx context.Context, event domain.Event) error
	RemoveEvent(ctx context.Context, id string) error
}

// Snapshot is one consistent view of the trip data.
type Snapshot struct {
	Participants []string                  `json:"participants"`
	TripDays     []string                  `json:"trip_days"`
	Events       []domain.Event            `json:"events"`
	Meals        domain.Meals              `json:"meals"`
	Profiles     map[string]domain.Profile `json:"profiles"`
}

// EmptySnapshot returns the state before anything was loaded: no events,
// nobody signed up for any meal, and an empty profile per participant.
func EmptySnapshot(roster config.Roster) Snapshot {
	return Snapshot{
		Participants: slices.Clone(roster.Participants),
		TripDays:     slices.Clone(roster.TripDays),
		Events:       []domain.Event{},
		Meals:        emptyMeals(roster),
		Profiles:     emptyProfiles(roster.Participants),
	}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Participants: slices.Clone(s.Participants),
		TripDays:     slices.Clone(s.TripDays),
		Events:       make([]domain.Event, len(s.Events)),
		Meals:        s.Meals.Clone(),
		Profiles:     make(map[string]domain.Profile, len(s.Profiles)),
	}
	for i, e := range s.Events {
		out.Events[i] = e.Clone()
	}
	for person, p := range s.Profiles {
		out.Profiles[person] = p.Clone()
	}
	return out
}

// Event returns the event with id, if present.
func (s Snapshot) Event(id string) (domain.Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}

func emptyMeals(roster config.Roster) domain.Meals {
	meals := make(domain.Meals, len(roster.TripDays))
	for _, day := range roster.TripDays {
		slots := make(map[domain.MealSlot]map[string]bool, len(domain.MealSlots))
		for _, slot := range domain.MealSlots {
			people := make(map[string]bool, len(roster.Participants))
			for _, p := range roster.Participants {
				people[p] = false
			}
			slots[slot] = people
		}
		meals[day] = slots
	}
	return meals
}

func emptyProfiles(participants []string) map[string]domain.Profile {
	out := make(map[string]domain.Profile, len(participants))
	for _, p := range participants {
		out[p] = domain.Profile{}
	}
	return out
}

func emptyRSVP(participants []string) map[string]domain.RSVPStatus {
	out := make(map[string]domain.RSVPStatus, len(participants))
	for _, p := range participants {
		out[p] = domain.RSVPPending
	}
	return out
}
