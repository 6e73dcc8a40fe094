package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// EventRepo defines the persistence operations for Events.
// The RSVP field of returned events is always nil; RSVPs live in RSVPRepo.
type EventRepo interface {
	// List returns all events ordered by date, then start time.
	List(ctx context.Context) ([]domain.Event, error)

	// Upsert inserts the event or overwrites every column of the row with the
	// same id.
	Upsert(ctx context.Context, event domain.Event) error

	// Delete removes an event and, via cascade, its RSVPs.
	// Returns domain.ErrNotFound if no event with that ID exists.
	Delete(ctx context.Context, id string) error
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

// List returns all events ordered by date and start time, NULL start times first.
func (r *pgEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	const q = `
		SELECT id, title, date, start_time, end_time, location, description, capacity, price_eur
		FROM events
		ORDER BY date ASC, start_time ASC NULLS FIRST, id ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.List: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.List: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.List: rows: %w", err)
	}
	return events, nil
}

// Upsert writes the event, replacing any existing row with the same id.
func (r *pgEventRepo) Upsert(ctx context.Context, event domain.Event) error {
	const q = `
		INSERT INTO events (id, title, date, start_time, end_time, location, description, capacity, price_eur)
		VALUES (@id, @title, @date, @start_time, @end_time, @location, @description, @capacity, @price_eur)
		ON CONFLICT (id) DO UPDATE
		SET title       = EXCLUDED.title,
		    date        = EXCLUDED.date,
		    start_time  = EXCLUDED.start_time,
		    end_time    = EXCLUDED.end_time,
		    location    = EXCLUDED.location,
		    description = EXCLUDED.description,
		    capacity    = EXCLUDED.capacity,
		    price_eur   = EXCLUDED.price_eur,
		    updated_at  = now()`

	args := pgx.NamedArgs{
		"id":          event.ID,
		"title":       event.Title,
		"date":        event.Date,
		"start_time":  nullText(event.StartTime),
		"end_time":    nullText(event.EndTime),
		"location":    nullText(event.Location),
		"description": nullText(event.Description),
		"capacity":    event.Capacity, // nil becomes NULL
		"price_eur":   event.PriceEUR,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.EventRepo.Upsert: %w", err)
	}
	return nil
}

// Delete removes an event by primary key.
func (r *pgEventRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM events WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanEvent maps a single database row into a domain.Event.
// It handles the nullable text, capacity, and price conversions.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e               domain.Event
		start, end      pgtype.Text
		location, descr pgtype.Text
		capacity        pgtype.Int4
		price           pgtype.Float8
	)
	err := s.Scan(&e.ID, &e.Title, &e.Date, &start, &end, &location, &descr, &capacity, &price)
	if err != nil {
		return domain.Event{}, err
	}
	e.StartTime = start.String
	e.EndTime = end.String
	e.Location = location.String
	e.Description = descr.String
	if capacity.Valid {
		c := int(capacity.Int32)
		e.Capacity = &c
	}
	if price.Valid {
		p := price.Float64
		e.PriceEUR = &p
	}
	return e, nil
}
