// Package domain contains the core data types for the trip planner.
// This package has zero external dependencies and is imported by every other
// internal package (repo, tripstore, service, handler).
package domain

// Event is a scheduled programme item on one of the trip days.
// RSVP maps every known participant to their status; a participant without a
// stored decision is RSVPPending.
type Event struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Date        string                `json:"date"` // "2006-01-02", one of the roster's trip days
	StartTime   string                `json:"start_time,omitempty"`
	EndTime     string                `json:"end_time,omitempty"`
	Location    string                `json:"location,omitempty"`
	Description string                `json:"description,omitempty"`
	Capacity    *int                  `json:"capacity,omitempty"`  // nil when attendance is unlimited
	PriceEUR    *float64              `json:"price_eur,omitempty"` // nil when the event is free or unpriced
	RSVP        map[string]RSVPStatus `json:"rsvp"`
}

// SortKey orders events chronologically. Events without a start time sort to
// the beginning of their day.
func (e Event) SortKey() string {
	start := e.StartTime
	if start == "" {
		start = "00:00"
	}
	return e.Date + "T" + start
}

// Clone returns a copy of e that shares no maps or pointers with it.
func (e Event) Clone() Event {
	out := e
	if e.Capacity != nil {
		c := *e.Capacity
		out.Capacity = &c
	}
	if e.PriceEUR != nil {
		p := *e.PriceEUR
		out.PriceEUR = &p
	}
	out.RSVP = make(map[string]RSVPStatus, len(e.RSVP))
	for person, status := range e.RSVP {
		out.RSVP[person] = status
	}
	return out
}
