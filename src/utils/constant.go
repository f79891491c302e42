package utils

import "math"

// -----------------------------------------------------------------------------

// Constants for data retention and memory sizing.
// A standard cash session is 6.5 hours; at 5-minute bars that is 78 bars per
// day, rounded up to 80 for safety.
const (
	DefaultRetentionDays = 7
	barsPerDay           = 80
)

// -----------------------------------------------------------------------------

// CalculateMaxDataPoints returns the buffer capacity for a retention horizon.
func CalculateMaxDataPoints(days int) int {
	return int(math.Ceil(float64(days) * barsPerDay))
}
