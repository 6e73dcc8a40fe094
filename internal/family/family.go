// Package family derives who a logged-in person may act for, and which people
// are grouped together when their expected costs are added up.
//
// Children are always enumerated in the order the guardian table declares
// them, since that order is what the UI shows in its quick actions.
package family

import (
	"slices"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
)

// Group labels returned by FamilyGroupForCosts.
const (
	LabelJustYou = "just you"
	LabelFamily  = "family"
)

// Group is the set of people whose costs are shown together.
type Group struct {
	Label  string   `json:"label"`
	People []string `json:"people"`
}

// Resolver answers family questions from an immutable guardian table.
// It is safe for concurrent use.
type Resolver struct {
	table []config.Guardianship
}

// NewResolver copies guardianships into a new Resolver. Later changes to the
// argument do not affect the resolver.
func NewResolver(guardianships []config.Guardianship) *Resolver {
	table := make([]config.Guardianship, len(guardianships))
	for i, g := range guardianships {
		table[i] = config.Guardianship{Child: g.Child, Guardians: slices.Clone(g.Guardians)}
	}
	return &Resolver{table: table}
}

// ManagedPeople returns person followed by every child person is a guardian of.
// Each name appears once and person is always first. It returns nil for an
// empty person.
func (r *Resolver) ManagedPeople(person string) []string {
	if person == "" {
		return nil
	}
	return uniq(append([]string{person}, r.children(person)...))
}

// FamilyGroupForCosts returns person, the other guardians of person's children
// and the children themselves, deduplicated in that order.
func (r *Resolver) FamilyGroupForCosts(person string) Group {
	if person == "" {
		return Group{Label: LabelJustYou}
	}

	kids := r.children(person)
	var coParents []string
	for _, kid := range kids {
		for _, g := range r.guardiansOf(kid) {
			if g != person {
				coParents = append(coParents, g)
			}
		}
	}
	coParents = uniq(coParents)

	people := make([]string, 0, 1+len(coParents)+len(kids))
	people = append(people, person)
	people = append(people, coParents...)
	people = append(people, kids...)

	label := LabelJustYou
	if len(kids) > 0 || len(coParents) > 0 {
		label = LabelFamily
	}
	return Group{Label: label, People: uniq(people)}
}

// CanActFor reports whether user may issue commands on behalf of person.
func (r *Resolver) CanActFor(user, person string) bool {
	return person != "" && slices.Contains(r.ManagedPeople(user), person)
}

// children lists the children guarded by person in declared table order.
// A child declared more than once is returned once.
func (r *Resolver) children(person string) []string {
	var kids []string
	for _, g := range r.table {
		if slices.Contains(g.Guardians, person) {
			kids = append(kids, g.Child)
		}
	}
	return uniq(kids)
}

// guardiansOf merges the guardian lists of every entry declaring child.
func (r *Resolver) guardiansOf(child string) []string {
	var out []string
	for _, g := range r.table {
		if g.Child == child {
			out = append(out, g.Guardians...)
		}
	}
	return out
}

// uniq drops repeated names, keeping the first occurrence.
func uniq(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
