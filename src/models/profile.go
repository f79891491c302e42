package models

// -----------------------------------------------------------------------------
// Day profile classification
// -----------------------------------------------------------------------------

// Profile labels
const (
	ProfileP1 = "P1" // directional expansion day
	ProfileP2 = "P2" // rotation to equilibrium, then continuation
	ProfileP3 = "P3" // balanced day targeting opposing liquidity
)

// Named trade targets
const (
	TargetPriorDayHigh     = "prior day high"
	TargetPriorDayLow      = "prior day low"
	TargetPriorDayEQ       = "prior day equilibrium"
	TargetPriorSessionHigh = "prior session high"
	TargetPriorSessionLow  = "prior session low"
	TargetCurrentEQRetest  = "current equilibrium retest"
	TargetOppositeExtreme  = "opposite session extreme"
)

// MTargets names the primary and secondary trade targets for a profile.
type MTargets struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// -----------------------------------------------------------------------------

// MProfileInputs are the inputs to ClassifyDayProfile.
// LastPrice is accepted for interface compatibility but is not consulted by
// the label rule; the SessionMap is echoed into the result unchanged.
type MProfileInputs struct {
	Bias       MBias                  `json:"bias"`
	SessionMap map[string]MTimeWindow `json:"session_map"`
	LastPrice  float64                `json:"last_price"`
}

// -----------------------------------------------------------------------------

// MDayProfile is the day-type classification with targets and rationale.
type MDayProfile struct {
	Symbol     string                 `json:"symbol"`
	AsOf       int64                  `json:"as_of"`
	Profile    string                 `json:"profile"` // "P1", "P2" or "P3"
	SessionMap map[string]MTimeWindow `json:"session_map"`
	Targets    MTargets               `json:"targets"`
	Rationale  []string               `json:"rationale"`
}
