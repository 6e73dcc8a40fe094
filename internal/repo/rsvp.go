package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// RSVPRepo defines the persistence operations for the rsvps table.
// A row is keyed by (event_id, person); a missing row means pending.
type RSVPRepo interface {
	// ListByEvents returns every RSVP row belonging to one of eventIDs.
	ListByEvents(ctx context.Context, eventIDs []string) ([]domain.RSVP, error)

	// UpsertMany writes all rows in a single batch. Last write wins per row.
	UpsertMany(ctx context.Context, rows []domain.RSVP) error
}

// pgRSVPRepo is the Postgres implementation of RSVPRepo.
type pgRSVPRepo struct {
	db db
}

// NewRSVPRepo constructs an RSVPRepo backed by the provided db connection.
func NewRSVPRepo(db db) RSVPRepo {
	return &pgRSVPRepo{db: db}
}

// ListByEvents returns the RSVP rows for the given events ordered by event and person.
// An empty id list returns an empty slice without touching the database.
func (r *pgRSVPRepo) ListByEvents(ctx context.Context, eventIDs []string) ([]domain.RSVP, error) {
	if len(eventIDs) == 0 {
		return []domain.RSVP{}, nil
	}

	const q = `
		SELECT event_id, person, status
		FROM rsvps
		WHERE event_id = ANY(@event_ids)
		ORDER BY event_id, person`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_ids": eventIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.RSVPRepo.ListByEvents: %w", err)
	}
	defer rows.Close()

	out := []domain.RSVP{}
	for rows.Next() {
		var (
			row    domain.RSVP
			status string
		)
		if err := rows.Scan(&row.EventID, &row.Person, &status); err != nil {
			return nil, fmt.Errorf("repo.RSVPRepo.ListByEvents: scan: %w", err)
		}
		row.Status = domain.RSVPStatus(status)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RSVPRepo.ListByEvents: rows: %w", err)
	}
	return out, nil
}

// UpsertMany inserts or overwrites every row in one batch.
func (r *pgRSVPRepo) UpsertMany(ctx context.Context, rows []domain.RSVP) error {
	if len(rows) == 0 {
		return nil
	}

	const q = `
		INSERT INTO rsvps (event_id, person, status)
		VALUES (@event_id, @person, @status)
		ON CONFLICT (event_id, person) DO UPDATE
		SET status = EXCLUDED.status, updated_at = now()`

	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(q, pgx.NamedArgs{
			"event_id": row.EventID,
			"person":   row.Person,
			"status":   string(row.Status),
		})
	}
	if err := execBatch(ctx, r.db, b); err != nil {
		return fmt.Errorf("repo.RSVPRepo.UpsertMany: %w", err)
	}
	return nil
}
