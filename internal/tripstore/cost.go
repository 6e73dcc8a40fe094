package tripstore

import (
	"math"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// ExpectedCost adds up, over every event with a finite positive price, the
// price once for each of people whose RSVP on that event is exactly yes.
func ExpectedCost(events []domain.Event, people []string) float64 {
	var sum float64
	for _, e := range events {
		if e.PriceEUR == nil {
			continue
		}
		price := *e.PriceEUR
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			continue
		}
		for _, p := range people {
			if e.RSVP[p] == domain.RSVPYes {
				sum += price
			}
		}
	}
	return sum
}
