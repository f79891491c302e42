package core

import (
	"fmt"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// Swing detection
// -----------------------------------------------------------------------------

// DetectSwings scans a bar series and returns its local price extrema.
// Bar i is a swing high iff its high strictly exceeds every other high in
// [i-lookback, i+lookback], and a swing low iff its low is strictly below
// every other low in that window. Ties never qualify, which avoids ambiguous
// double-labeling of equal extremes. Positions within lookback of either
// boundary lack context and are skipped, not errored.
func DetectSwings(bars []models.MBar, lookback int) ([]models.MSwingPoint, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("detect swings: empty bar series")
	}
	if lookback <= 0 {
		return nil, fmt.Errorf("detect swings: lookback must be positive, got %d", lookback)
	}

	var swings []models.MSwingPoint

	for i := lookback; i < len(bars)-lookback; i++ {
		isHigh, isLow := true, true

		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		// A wide-range bar can dominate as both; emit the high first so the
		// output stays in scan order.
		if isHigh {
			swings = append(swings, models.MSwingPoint{
				Index:     i,
				Timestamp: bars[i].Timestamp,
				Price:     bars[i].High,
				Type:      models.SwingHigh,
			})
		}
		if isLow {
			swings = append(swings, models.MSwingPoint{
				Index:     i,
				Timestamp: bars[i].Timestamp,
				Price:     bars[i].Low,
				Type:      models.SwingLow,
			})
		}
	}

	return swings, nil
}
