package analysis

import (
	"sort"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// Bar resampling
// -----------------------------------------------------------------------------

// Seconds per resample window for the common cases.
const (
	DaySeconds  int64 = 86400
	HourSeconds int64 = 3600
)

// -----------------------------------------------------------------------------

// ResampleBars folds a bar series into aligned windows of windowSeconds,
// producing one bar per non-empty window: first open, max high, min low,
// last close, summed volume. Input order is preserved within a window, so an
// already-chronological series keeps deterministic open/close selection.
// Windows align to the epoch (timestamp - timestamp % windowSeconds).
func ResampleBars(bars []models.MBar, windowSeconds int64) []models.MBar {
	if len(bars) == 0 || windowSeconds <= 0 {
		return nil
	}

	grouped := make(map[int64][]models.MBar)
	for _, bar := range bars {
		wStart := bar.Timestamp - (bar.Timestamp % windowSeconds)
		grouped[wStart] = append(grouped[wStart], bar)
	}

	windowStarts := make([]int64, 0, len(grouped))
	for wStart := range grouped {
		windowStarts = append(windowStarts, wStart)
	}
	sort.Slice(windowStarts, func(i, j int) bool {
		return windowStarts[i] < windowStarts[j]
	})

	out := make([]models.MBar, 0, len(windowStarts))
	for _, wStart := range windowStarts {
		subset := grouped[wStart]

		folded := models.MBar{
			Symbol:    subset[0].Symbol,
			Timestamp: wStart,
			Open:      subset[0].Open,
			High:      subset[0].High,
			Low:       subset[0].Low,
			Close:     subset[len(subset)-1].Close,
			FetchedAt: subset[len(subset)-1].FetchedAt,
			CreatedAt: subset[0].CreatedAt,
		}
		for _, bar := range subset {
			if bar.High > folded.High {
				folded.High = bar.High
			}
			if bar.Low < folded.Low {
				folded.Low = bar.Low
			}
			folded.Volume += bar.Volume
		}

		out = append(out, folded)
	}

	return out
}

// -----------------------------------------------------------------------------

// ResampleDaily folds intraday bars into one bar per UTC day.
func ResampleDaily(bars []models.MBar) []models.MBar {
	return ResampleBars(bars, DaySeconds)
}

// -----------------------------------------------------------------------------

// CalculateWindowBoundaries returns the aligned [start, end) window containing ts.
func CalculateWindowBoundaries(ts int64, window int64) (int64, int64) {
	start := ts - (ts % window)
	return start, start + window
}
