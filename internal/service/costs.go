package service

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CostSummary is the expected spend of a user's cost group.
type CostSummary struct {
	Label     string   `json:"label"`
	People    []string `json:"people"`
	Total     float64  `json:"total"`
	Formatted string   `json:"formatted"`
}

var eurPrinter = message.NewPrinter(language.German)

// FormatEUR renders an amount as whole euros without digit grouping,
// e.g. 1250.4 as "1250€". Halves round away from zero. Non-finite amounts
// render as "0€".
func FormatEUR(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return eurPrinter.Sprintf("%v€", number.Decimal(int64(math.Round(v)), number.NoSeparator()))
}

// Costs adds up the prices of every event the user's cost group said yes to.
func (p *Planner) Costs(user string) (CostSummary, error) {
	store, err := p.storeFor(user)
	if err != nil {
		return CostSummary{}, fmt.Errorf("service.Planner.Costs: %w", err)
	}
	group := p.family.FamilyGroupForCosts(user)
	total := store.ExpectedCost(group.People)
	return CostSummary{
		Label:     group.Label,
		People:    group.People,
		Total:     total,
		Formatted: FormatEUR(total),
	}, nil
}
