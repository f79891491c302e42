package helpers

import (
	"fmt"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// Bar validation
// -----------------------------------------------------------------------------

// ValidateBar checks the OHLC invariants of a single bar.
func ValidateBar(bar models.MBar) error {
	if bar.High < bar.Low {
		return validationErr(bar, "high %.6f below low %.6f", bar.High, bar.Low)
	}
	if bar.High < bar.Open || bar.High < bar.Close {
		return validationErr(bar, "high %.6f below open/close", bar.High)
	}
	if bar.Low > bar.Open || bar.Low > bar.Close {
		return validationErr(bar, "low %.6f above open/close", bar.Low)
	}
	if bar.Volume < 0 {
		return validationErr(bar, "negative volume %.2f", bar.Volume)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ValidateBars checks every bar plus the chronological ordering of the
// series. The analysis core trusts series that pass this check.
func ValidateBars(bars []models.MBar) error {
	for i, bar := range bars {
		if err := ValidateBar(bar); err != nil {
			return err
		}
		if i > 0 && bar.Timestamp < bars[i-1].Timestamp {
			return validationErr(bar, "out-of-order timestamp after %d", bars[i-1].Timestamp)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func validationErr(bar models.MBar, format string, args ...interface{}) error {
	symbol := bar.Symbol
	if symbol == "" {
		symbol = "bar"
	}
	detail := fmt.Sprintf(format, args...)
	return &ValidationError{EngineError{
		Message: fmt.Sprintf("%s @%d: %s", symbol, bar.Timestamp, detail),
	}}
}
