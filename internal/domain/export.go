package domain

// AttendanceRow is a single row in the attendance export.
// It is a flat, denormalized view: one row per event and participant, with the
// event fields repeated for every participant.
type AttendanceRow struct {
	EventID    string
	EventTitle string
	EventDate  string
	StartTime  string // empty when the event has no start time
	Person     string
	Status     RSVPStatus
	PriceEUR   *float64
}
