package domain

// Leg is one direction of a participant's travel.
type Leg struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Flight string `json:"flight"`
}

// Profile holds a participant's travel details. Either leg may be missing.
type Profile struct {
	Arrival   *Leg `json:"arrival,omitempty"`
	Departure *Leg `json:"departure,omitempty"`
}

// ProfileRow is one stored row of the profiles table.
type ProfileRow struct {
	Person string
	Profile
}

// LegPatch carries the fields of a Leg that should change. Nil fields keep
// their previous value.
type LegPatch struct {
	Date   *string `json:"date,omitempty"`
	Time   *string `json:"time,omitempty"`
	Flight *string `json:"flight,omitempty"`
}

// ProfilePatch is a partial update of a Profile. A nil leg is left untouched.
type ProfilePatch struct {
	Arrival   *LegPatch `json:"arrival,omitempty"`
	Departure *LegPatch `json:"departure,omitempty"`
}

// Apply merges patch into p one level deep: each patched leg becomes the
// merge of the old leg and the patch, an unpatched leg is kept as is.
func (p Profile) Apply(patch ProfilePatch) Profile {
	out := p.Clone()
	if patch.Arrival != nil {
		out.Arrival = mergeLeg(out.Arrival, *patch.Arrival)
	}
	if patch.Departure != nil {
		out.Departure = mergeLeg(out.Departure, *patch.Departure)
	}
	return out
}

// Clone returns a copy of p with its own legs.
func (p Profile) Clone() Profile {
	var out Profile
	if p.Arrival != nil {
		a := *p.Arrival
		out.Arrival = &a
	}
	if p.Departure != nil {
		d := *p.Departure
		out.Departure = &d
	}
	return out
}

func mergeLeg(old *Leg, patch LegPatch) *Leg {
	var leg Leg
	if old != nil {
		leg = *old
	}
	if patch.Date != nil {
		leg.Date = *patch.Date
	}
	if patch.Time != nil {
		leg.Time = *patch.Time
	}
	if patch.Flight != nil {
		leg.Flight = *patch.Flight
	}
	return &leg
}
