package dataset

import "strings"

// Filter selects wines. Zero-valued fields match everything.
type Filter struct {
	// Origin must match exactly when set.
	Origin string

	// NameContains is a case-insensitive substring of the wine name.
	NameContains string

	// AlcoholMin and AlcoholMax bound the alcohol content, inclusive.
	AlcoholMin *float64
	AlcoholMax *float64
}

// Apply returns a new Dataset holding the wines that pass f, in order.
// Dropped is carried over from d.
func (f Filter) Apply(d *Dataset) *Dataset {
	out := &Dataset{Dropped: d.Dropped}
	needle := strings.ToLower(f.NameContains)
	alcohol := FeatureIndex("alcohol")
	for _, w := range d.Wines {
		if f.Origin != "" && w.Origin != f.Origin {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(w.Name), needle) {
			continue
		}
		if f.AlcoholMin != nil && w.Features[alcohol] < *f.AlcoholMin {
			continue
		}
		if f.AlcoholMax != nil && w.Features[alcohol] > *f.AlcoholMax {
			continue
		}
		out.Wines = append(out.Wines, w)
	}
	return out
}
