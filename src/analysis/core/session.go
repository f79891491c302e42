package core

import "market-structure/src/models"

// -----------------------------------------------------------------------------
// Session extremes
// -----------------------------------------------------------------------------

// ExtractSessionExtremes returns the highest high and lowest low among bars
// whose timestamp falls inside the window, each paired with the timestamp of
// the bar that produced it. Window bounds are inclusive on both ends. If no
// bar qualifies the result is nil: that is legitimate "no session data", not
// an error, and callers must check it before feeding the bias stage.
// When bars tie for an extreme the chronologically earliest one wins.
func ExtractSessionExtremes(bars []models.MBar, window models.MTimeWindow) *models.MSessionExtremes {
	var ext *models.MSessionExtremes

	for _, bar := range bars {
		if !window.Contains(bar.Timestamp) {
			continue
		}

		if ext == nil {
			ext = &models.MSessionExtremes{
				High:          bar.High,
				HighTimestamp: bar.Timestamp,
				Low:           bar.Low,
				LowTimestamp:  bar.Timestamp,
			}
			continue
		}

		// Strict comparisons keep the earliest bar on ties.
		if bar.High > ext.High {
			ext.High = bar.High
			ext.HighTimestamp = bar.Timestamp
		}
		if bar.Low < ext.Low {
			ext.Low = bar.Low
			ext.LowTimestamp = bar.Timestamp
		}
	}

	return ext
}
