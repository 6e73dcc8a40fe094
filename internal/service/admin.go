package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// Ranges that admin input is clamped into.
const (
	MinCapacity = 1
	MaxCapacity = 200
	MinPriceEUR = 0
	MaxPriceEUR = 100000
)

// EventDraft is the admin form for creating or editing an event.
// An empty ID creates a new event.
type EventDraft struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Capacity    *int     `json:"capacity"`
	PriceEUR    *float64 `json:"price_eur"`
}

// UnlockAdmin checks the admin PIN. It is a convenience gate, not
// authentication: only the configured admin may unlock, with the exact PIN.
func (p *Planner) UnlockAdmin(user, pin string) error {
	if p.opts.AdminName == "" || user != p.opts.AdminName || pin != p.opts.AdminPIN {
		return fmt.Errorf("service.Planner.UnlockAdmin: %w", domain.ErrForbidden)
	}
	return nil
}

func (p *Planner) requireAdmin(user string, unlocked bool) error {
	if !unlocked || user != p.opts.AdminName {
		return fmt.Errorf("%w: admin mode is locked", domain.ErrForbidden)
	}
	return nil
}

// SaveEvent creates or overwrites an event and returns it as stored.
// unlocked is the admin flag of the caller's HTTP session.
func (p *Planner) SaveEvent(ctx context.Context, user string, unlocked bool, draft EventDraft) (domain.Event, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.Planner.SaveEvent: %w", err)
	}
	if err := p.requireAdmin(user, unlocked); err != nil {
		return domain.Event{}, fmt.Errorf("service.Planner.SaveEvent: %w", err)
	}

	event, err := p.eventFromDraft(draft)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.Planner.SaveEvent: %w", err)
	}
	if err := store.UpsertEvent(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("service.Planner.SaveEvent: %w", err)
	}
	if saved, ok := store.Snapshot().Event(event.ID); ok {
		return saved, nil
	}
	return event, nil
}

// DeleteEvent removes an event and every RSVP on it.
func (p *Planner) DeleteEvent(ctx context.Context, user string, unlocked bool, id string) error {
	store, err := p.storeFor(user)
	if err != nil {
		return fmt.Errorf("service.Planner.DeleteEvent: %w", err)
	}
	if err := p.requireAdmin(user, unlocked); err != nil {
		return fmt.Errorf("service.Planner.DeleteEvent: %w", err)
	}
	if err := store.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("service.Planner.DeleteEvent: %w", err)
	}
	return nil
}

func (p *Planner) eventFromDraft(d EventDraft) (domain.Event, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return domain.Event{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !p.roster.HasDay(d.Date) {
		return domain.Event{}, fmt.Errorf("%w: %q is not a trip day", domain.ErrValidation, d.Date)
	}

	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = NewEventID()
	}

	e := domain.Event{
		ID:          id,
		Title:       title,
		Date:        d.Date,
		StartTime:   strings.TrimSpace(d.StartTime),
		EndTime:     strings.TrimSpace(d.EndTime),
		Location:    strings.TrimSpace(d.Location),
		Description: strings.TrimSpace(d.Description),
	}
	if d.Capacity != nil {
		c := min(max(*d.Capacity, MinCapacity), MaxCapacity)
		e.Capacity = &c
	}
	if d.PriceEUR != nil {
		price := *d.PriceEUR
		if math.IsNaN(price) {
			price = MinPriceEUR
		}
		price = min(max(price, MinPriceEUR), MaxPriceEUR)
		e.PriceEUR = &price
	}
	return e, nil
}

// NewEventID returns a fresh event identifier of the form evt_<uuid>.
func NewEventID() string {
	return "evt_" + uuid.NewString()
}
