package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// Roster is the fixed trip configuration: which days exist, who takes part,
// and which adults act for which children. It is loaded once at startup and
// treated as read-only afterwards.
type Roster struct {
	TripDays     []string       `yaml:"trip_days"`
	Participants []string       `yaml:"participants"`
	Guardians    []Guardianship `yaml:"guardians"`
}

// Guardianship lists the guardians responsible for one child.
type Guardianship struct {
	Child     string   `yaml:"child"`
	Guardians []string `yaml:"guardians"`
}

// DefaultRoster returns the roster compiled into the binary.
func DefaultRoster() (Roster, error) {
	return parseRoster(defaultRoster)
}

// LoadRoster reads a roster from path, or returns DefaultRoster when path is empty.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("config.LoadRoster: %w", err)
	}
	r, err := parseRoster(raw)
	if err != nil {
		return Roster{}, fmt.Errorf("config.LoadRoster: %s: %w", path, err)
	}
	return r, nil
}

func parseRoster(raw []byte) (Roster, error) {
	var r Roster
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

// Validate checks the roster for structural mistakes. Names used in
// guardianships are not required to be participants.
func (r Roster) Validate() error {
	var errs []error

	if len(r.TripDays) == 0 {
		errs = append(errs, errors.New("trip_days must not be empty"))
	}
	for _, d := range r.TripDays {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			errs = append(errs, fmt.Errorf("trip day %q is not YYYY-MM-DD", d))
		}
	}

	if len(r.Participants) == 0 {
		errs = append(errs, errors.New("participants must not be empty"))
	}
	seen := make(map[string]bool, len(r.Participants))
	for _, p := range r.Participants {
		if p == "" {
			errs = append(errs, errors.New("participant name must not be empty"))
			continue
		}
		if seen[p] {
			errs = append(errs, fmt.Errorf("participant %q listed twice", p))
		}
		seen[p] = true
	}

	for i, g := range r.Guardians {
		if g.Child == "" {
			errs = append(errs, fmt.Errorf("guardians[%d]: child is required", i))
		}
		if len(g.Guardians) == 0 {
			errs = append(errs, fmt.Errorf("guardians[%d]: at least one guardian is required", i))
		}
	}

	return errors.Join(errs...)
}

// HasDay reports whether day is one of the trip days.
func (r Roster) HasDay(day string) bool {
	for _, d := range r.TripDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasParticipant reports whether name is on the participant list.
func (r Roster) HasParticipant(name string) bool {
	for _, p := range r.Participants {
		if p == name {
			return true
		}
	}
	return false
}
