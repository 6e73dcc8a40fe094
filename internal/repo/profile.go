package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// ProfileRepo defines the persistence operations for the profiles table.
type ProfileRepo interface {
	// List returns every stored profile ordered by person.
	List(ctx context.Context) ([]domain.ProfileRow, error)

	// Upsert writes the full profile row for a person. Empty fields and missing
	// legs are stored as NULL.
	Upsert(ctx context.Context, row domain.ProfileRow) error
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

// List returns all profiles.
func (r *pgProfileRepo) List(ctx context.Context) ([]domain.ProfileRow, error) {
	const q = `
		SELECT person, arrival_date, arrival_time, arrival_flight,
		       departure_date, departure_time, departure_flight
		FROM profiles
		ORDER BY person`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ProfileRepo.List: %w", err)
	}
	defer rows.Close()

	out := []domain.ProfileRow{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ProfileRepo.List: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ProfileRepo.List: rows: %w", err)
	}
	return out, nil
}

// Upsert replaces the profile row keyed by person.
func (r *pgProfileRepo) Upsert(ctx context.Context, row domain.ProfileRow) error {
	const q = `
		INSERT INTO profiles (person, arrival_date, arrival_time, arrival_flight,
		                      departure_date, departure_time, departure_flight)
		VALUES (@person, @arrival_date, @arrival_time, @arrival_flight,
		        @departure_date, @departure_time, @departure_flight)
		ON CONFLICT (person) DO UPDATE
		SET arrival_date     = EXCLUDED.arrival_date,
		    arrival_time     = EXCLUDED.arrival_time,
		    arrival_flight   = EXCLUDED.arrival_flight,
		    departure_date   = EXCLUDED.departure_date,
		    departure_time   = EXCLUDED.departure_time,
		    departure_flight = EXCLUDED.departure_flight,
		    updated_at       = now()`

	var arrival, departure domain.Leg
	if row.Arrival != nil {
		arrival = *row.Arrival
	}
	if row.Departure != nil {
		departure = *row.Departure
	}

	args := pgx.NamedArgs{
		"person":           row.Person,
		"arrival_date":     nullText(arrival.Date),
		"arrival_time":     nullText(arrival.Time),
		"arrival_flight":   nullText(arrival.Flight),
		"departure_date":   nullText(departure.Date),
		"departure_time":   nullText(departure.Time),
		"departure_flight": nullText(departure.Flight),
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ProfileRepo.Upsert: %w", err)
	}
	return nil
}

// scanProfile maps a profiles row into a domain.ProfileRow. Both legs are
// always populated; NULL columns become empty strings.
func scanProfile(s scanner) (domain.ProfileRow, error) {
	var (
		p                  domain.ProfileRow
		aDate, aTime, aFlt pgtype.Text
		dDate, dTime, dFlt pgtype.Text
	)
	if err := s.Scan(&p.Person, &aDate, &aTime, &aFlt, &dDate, &dTime, &dFlt); err != nil {
		return domain.ProfileRow{}, err
	}
	p.Arrival = &domain.Leg{Date: aDate.String, Time: aTime.String, Flight: aFlt.String}
	p.Departure = &domain.Leg{Date: dDate.String, Time: dTime.String, Flight: dFlt.String}
	return p, nil
}
