package domain

import "fmt"

// RSVPStatus is a participant's answer for one event.
type RSVPStatus string

const (
	RSVPYes RSVPStatus = "yes"
	RSVPNo  RSVPStatus = "no"
	// RSVPPending means no row exists for the participant on that event.
	RSVPPending RSVPStatus = "pending"
)

// ParseRSVPStatus validates a status supplied for a write.
// Only yes and no can be stored; pending is the absence of a decision.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	switch RSVPStatus(s) {
	case RSVPYes, RSVPNo:
		return RSVPStatus(s), nil
	default:
		return "", fmt.Errorf("%w: rsvp status must be yes or no, got %q", ErrValidation, s)
	}
}

// RSVP is one stored row of the rsvps table.
type RSVP struct {
	EventID string     `json:"event_id"`
	Person  string     `json:"person"`
	Status  RSVPStatus `json:"status"`
}
