package core

import (
	"fmt"
	"math"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// Daily bias
// -----------------------------------------------------------------------------

// Default thresholds, as fractions of the session range. Overridable per call
// via MAnalysisConfig through the facade.
const (
	DefaultNeutralBandFrac = 0.10
	DefaultRetraceFrac     = 0.25
	DefaultRecentCloses    = 5
)

// -----------------------------------------------------------------------------

// CalculateDailyBias classifies the directional bias of a bar series against
// its session extremes. Equilibrium is the midpoint of the session range.
//
//   - The direction is neutral while the last close sits within the neutral
//     band around equilibrium, long above it, short below it.
//   - The structure state is trending when the last close sits in the outer
//     quarter of the range on its side AND the mean of the recent closes lies
//     on that same side of equilibrium; balanced otherwise.
//   - IntoEquilibrium is set when price has pulled back from its session
//     extreme by more than the retrace fraction of the range without crossing
//     the neutral band: a pending test of balance, not a confirmed breakout.
//
// Extremes must be non-nil; absence is a caller error here, the extractor
// already models it as a first-class nil result.
func CalculateDailyBias(bars []models.MBar, extremes *models.MSessionExtremes) (models.MBias, error) {
	return CalculateDailyBiasWith(bars, extremes, DefaultNeutralBandFrac, DefaultRetraceFrac, DefaultRecentCloses)
}

// -----------------------------------------------------------------------------

// CalculateDailyBiasWith is CalculateDailyBias with explicit thresholds.
func CalculateDailyBiasWith(
	bars []models.MBar,
	extremes *models.MSessionExtremes,
	neutralBandFrac, retraceFrac float64,
	recentCloses int,
) (models.MBias, error) {
	if len(bars) == 0 {
		return models.MBias{}, fmt.Errorf("daily bias: empty bar series")
	}
	if extremes == nil {
		return models.MBias{}, fmt.Errorf("daily bias: session extremes are required")
	}
	if neutralBandFrac <= 0 {
		neutralBandFrac = DefaultNeutralBandFrac
	}
	if retraceFrac <= 0 {
		retraceFrac = DefaultRetraceFrac
	}
	if recentCloses <= 0 {
		recentCloses = DefaultRecentCloses
	}

	last := bars[len(bars)-1]
	bias := models.MBias{
		Symbol:    last.Symbol,
		AsOf:      last.Timestamp,
		Direction: models.DirectionNeutral,
		Structure: models.MStructure{State: models.StateBalanced},
	}

	eq := extremes.Equilibrium()
	rng := extremes.Range()

	// Degenerate session (single price) or price pinned to equilibrium.
	if rng <= 0 || math.Abs(last.Close-eq) <= rng*neutralBandFrac {
		return bias, nil
	}

	if last.Close > eq {
		bias.Direction = models.DirectionLong
	} else {
		bias.Direction = models.DirectionShort
	}

	// Structure state from where the recent closes sit in the session range.
	n := recentCloses
	if n > len(bars) {
		n = len(bars)
	}
	closes := make([]float64, 0, n)
	for _, bar := range bars[len(bars)-n:] {
		closes = append(closes, bar.Close)
	}
	recentMean, _ := CalculateMeanStd(closes)

	outer := math.Abs(last.Close-eq) >= rng*retraceFrac
	aligned := (last.Close > eq) == (recentMean > eq)
	if outer && aligned {
		bias.Structure.State = models.StateTrending
	}

	// Pullback off the session extreme toward equilibrium.
	switch bias.Direction {
	case models.DirectionLong:
		bias.IntoEquilibrium = extremes.High-last.Close > rng*retraceFrac
	case models.DirectionShort:
		bias.IntoEquilibrium = last.Close-extremes.Low > rng*retraceFrac
	}

	return bias, nil
}
