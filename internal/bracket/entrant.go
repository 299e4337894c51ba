package bracket

// Entrant is a confirmed team or pair taking part in a draw. Seed is the
// optional placement rank used by manual seeding; it is not the RNG seed.
type Entrant struct {
	ID   int64 `json:"id" yaml:"id"`
	Seed *int  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// EntrantIDs strips placement seeds, keeping the input order.
func EntrantIDs(entrants []Entrant) []int64 {
	ids := make([]int64, 0, len(entrants))
	for _, e := range entrants {
		ids = append(ids, e.ID)
	}
	return ids
}

// EntrantsFromIDs wraps plain ids as unseeded entrants.
func EntrantsFromIDs(ids []int64) []Entrant {
	entrants := make([]Entrant, 0, len(ids))
	for _, id := range ids {
		entrants = append(entrants, Entrant{ID: id})
	}
	return entrants
}
