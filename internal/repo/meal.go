package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// MealRepo defines the persistence operations for the meals table.
// A row is keyed by (day, meal_type, person); a missing row means not signed up.
type MealRepo interface {
	// ListByDays returns every meal row whose day is one of days.
	ListByDays(ctx context.Context, days []string) ([]domain.MealSignup, error)

	// UpsertMany writes all rows in a single batch. Last write wins per row.
	UpsertMany(ctx context.Context, rows []domain.MealSignup) error
}

// pgMealRepo is the Postgres implementation of MealRepo.
type pgMealRepo struct {
	db db
}

// NewMealRepo constructs a MealRepo backed by the provided db connection.
func NewMealRepo(db db) MealRepo {
	return &pgMealRepo{db: db}
}

// ListByDays returns the meal rows for the given days.
func (r *pgMealRepo) ListByDays(ctx context.Context, days []string) ([]domain.MealSignup, error) {
	const q = `
		SELECT day, meal_type, person, enabled
		FROM meals
		WHERE day = ANY(@days)
		ORDER BY day, meal_type, person`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"days": days})
	if err != nil {
		return nil, fmt.Errorf("repo.MealRepo.ListByDays: %w", err)
	}
	defer rows.Close()

	out := []domain.MealSignup{}
	for rows.Next() {
		var (
			row  domain.MealSignup
			slot string
		)
		if err := rows.Scan(&row.Day, &slot, &row.Person, &row.Enabled); err != nil {
			return nil, fmt.Errorf("repo.MealRepo.ListByDays: scan: %w", err)
		}
		row.Slot = domain.MealSlot(slot)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MealRepo.ListByDays: rows: %w", err)
	}
	return out, nil
}

// UpsertMany inserts or overwrites every row in one batch.
func (r *pgMealRepo) UpsertMany(ctx context.Context, rows []domain.MealSignup) error {
	if len(rows) == 0 {
		return nil
	}

	const q = `
		INSERT INTO meals (day, meal_type, person, enabled)
		VALUES (@day, @meal_type, @person, @enabled)
		ON CONFLICT (day, meal_type, person) DO UPDATE
		SET enabled = EXCLUDED.enabled, updated_at = now()`

	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(q, pgx.NamedArgs{
			"day":       row.Day,
			"meal_type": string(row.Slot),
			"person":    row.Person,
			"enabled":   row.Enabled,
		})
	}
	if err := execBatch(ctx, r.db, b); err != nil {
		return fmt.Errorf("repo.MealRepo.UpsertMany: %w", err)
	}
	return nil
}
