package domain

import "fmt"

// MealSlot names one of the shared meals of a trip day.
type MealSlot string

const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Dinner    MealSlot = "dinner"
)

// MealSlots lists every slot in the order they happen during a day.
var MealSlots = []MealSlot{Breakfast, Lunch, Dinner}

// ParseMealSlot validates a meal slot name.
func ParseMealSlot(s string) (MealSlot, error) {
	for _, slot := range MealSlots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: unknown meal slot %q", ErrValidation, s)
}

// MealSignup is one stored row of the meals table.
type MealSignup struct {
	Day     string   `json:"day"`
	Slot    MealSlot `json:"meal_type"`
	Person  string   `json:"person"`
	Enabled bool     `json:"enabled"`
}

// Meals is the signup grid: day -> slot -> person -> attending.
type Meals map[string]map[MealSlot]map[string]bool

// Clone returns a deep copy of m.
func (m Meals) Clone() Meals {
	out := make(Meals, len(m))
	for day, slots := range m {
		outSlots := make(map[MealSlot]map[string]bool, len(slots))
		for slot, people := range slots {
			outPeople := make(map[string]bool, len(people))
			for person, on := range people {
				outPeople[person] = on
			}
			outSlots[slot] = outPeople
		}
		out[day] = outSlots
	}
	return out
}
