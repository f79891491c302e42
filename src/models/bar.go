package models

import "time"

// MBar represents one validated OHLCV observation for a fixed interval.
// Invariants (enforced by helpers.ValidateBars before a series reaches the
// analysis core): High >= Low, High >= max(Open, Close), Low <= min(Open, Close),
// Volume >= 0. A series is chronologically ordered and insertion-order significant.
type MBar struct {
	Symbol    string    `json:"symbol"`
	Timestamp int64     `json:"timestamp"` // unix seconds, bar open time
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	FetchedAt int64     `json:"fetched_at"`
	CreatedAt time.Time `json:"created_at"`
}

// -----------------------------------------------------------------------------

// MTimeWindow is a closed interval over the bar timestamp domain.
// Both bounds are inclusive; Start <= End is a caller precondition.
type MTimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// -----------------------------------------------------------------------------

// Contains reports whether ts falls inside the window (inclusive on both ends).
func (w MTimeWindow) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}
