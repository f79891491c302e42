package models

// -----------------------------------------------------------------------------
// Directional bias
// -----------------------------------------------------------------------------

// Bias directions
const (
	DirectionLong    = "long"
	DirectionShort   = "short"
	DirectionNeutral = "neutral"
)

// Structure states
const (
	StateTrending = "trending"
	StateBalanced = "balanced"
)

// MStructure carries the structural qualifier of a bias.
type MStructure struct {
	State string `json:"state"` // "trending" or "balanced"
}

// -----------------------------------------------------------------------------

// MBias is the directional classification of a symbol at a point in time.
// Direction and IntoEquilibrium replace the legacy single-token encoding
// ("long-into-eq" etc) so downstream branching matches on fields instead of
// parsing string prefixes/suffixes. Token() renders the legacy form.
type MBias struct {
	Symbol          string     `json:"symbol"`
	AsOf            int64      `json:"as_of"`
	Direction       string     `json:"direction"` // "long", "short" or "neutral"
	IntoEquilibrium bool       `json:"into_equilibrium"`
	Structure       MStructure `json:"structure"`
}

// -----------------------------------------------------------------------------

// Token renders the bias in its legacy wire form: "neutral", "long", "short",
// "long-into-eq" or "short-into-eq".
func (b MBias) Token() string {
	if b.Direction == DirectionNeutral || b.Direction == "" {
		return DirectionNeutral
	}
	if b.IntoEquilibrium {
		return b.Direction + "-into-eq"
	}
	return b.Direction
}

// -----------------------------------------------------------------------------

// Directional reports whether the bias carries a long/short direction.
func (b MBias) Directional() bool {
	return b.Direction == DirectionLong || b.Direction == DirectionShort
}
