package service

import (
	"fmt"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// Export returns one AttendanceRow per event and participant, events in
// schedule order and participants in roster order.
// An event contributes a row for every participant, including pending ones.
func (p *Planner) Export(user string) ([]domain.AttendanceRow, error) {
	snap, err := p.Snapshot(user)
	if err != nil {
		return nil, fmt.Errorf("service.Planner.Export: %w", err)
	}

	rows := make([]domain.AttendanceRow, 0, len(snap.Events)*len(snap.Participants))
	for _, e := range snap.Events {
		for _, person := range snap.Participants {
			status, ok := e.RSVP[person]
			if !ok {
				status = domain.RSVPPending
			}
			rows = append(rows, domain.AttendanceRow{
				EventID:    e.ID,
				EventTitle: e.Title,
				EventDate:  e.Date,
				StartTime:  e.StartTime,
				Person:     person,
				Status:     status,
				PriceEUR:   e.PriceEUR,
			})
		}
	}
	return rows, nil
}
