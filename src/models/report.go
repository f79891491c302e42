package models

// Session map keys used when windows are derived from a trading calendar.
// The profile classifier treats the map as opaque pass-through.
const (
	SessionCurrent = "current"
	SessionPrior   = "prior"
)

// -----------------------------------------------------------------------------
// Structure report
// -----------------------------------------------------------------------------

// MStructureReport is the full analysis output for one symbol: swings over the
// loaded history, session extremes for the current session window, bias and
// day profile, plus resolved price levels for the named targets where the
// available history allows resolution.
type MStructureReport struct {
	Symbol    string                 `json:"symbol"`
	AsOf      int64                  `json:"as_of"`
	BarCount  int                    `json:"bar_count"`
	Window    MTimeWindow            `json:"window"`
	Swings    []MSwingPoint          `json:"swings"`
	Extremes  *MSessionExtremes      `json:"extremes,omitempty"`
	Bias      *MBias                 `json:"bias,omitempty"`
	Profile   *MDayProfile           `json:"profile,omitempty"`
	Levels    map[string]float64     `json:"levels,omitempty"`
	NoSession bool                   `json:"no_session"` // no bar fell inside the session window
	Sessions  map[string]MTimeWindow `json:"sessions,omitempty"`
}
