package models

// -----------------------------------------------------------------------------
// Swing points
// -----------------------------------------------------------------------------

// Swing point types
const (
	SwingHigh = "high"
	SwingLow  = "low"
)

// MSwingPoint is a local price extremum relative to a symmetric neighborhood
// of bars. Index refers to the position in the input series; the point carries
// no back-reference to the series itself.
type MSwingPoint struct {
	Index     int     `json:"index"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"` // "high" or "low"
}

// -----------------------------------------------------------------------------
// Session extremes
// -----------------------------------------------------------------------------

// MSessionExtremes holds the highest high and lowest low observed within a
// time window, each paired with the timestamp of the bar that produced it.
type MSessionExtremes struct {
	High          float64 `json:"high"`
	HighTimestamp int64   `json:"high_timestamp"`
	Low           float64 `json:"low"`
	LowTimestamp  int64   `json:"low_timestamp"`
}

// -----------------------------------------------------------------------------

// Equilibrium returns the midpoint of the session range, the mean-reversion
// reference level for bias and profile classification.
func (e MSessionExtremes) Equilibrium() float64 {
	return (e.High + e.Low) / 2
}

// -----------------------------------------------------------------------------

// Range returns the session high-low spread.
func (e MSessionExtremes) Range() float64 {
	return e.High - e.Low
}
