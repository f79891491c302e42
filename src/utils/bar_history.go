package utils

import (
	"sync"

	"market-structure/src/logger"
	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// BarHistory keeps the in-memory bar buffers for all tracked symbols.
// Capacity is derived from the retention policy, so old bars age out of
// memory at the same rate the storage layer cleans them up.
// -----------------------------------------------------------------------------

type BarHistory struct {
	Streams   map[string]*RingBuffer
	MaxPoints int
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewBarHistory(maxPoints int) *BarHistory {
	return &BarHistory{
		Streams:   make(map[string]*RingBuffer),
		MaxPoints: maxPoints,
		Logger:    logger.NewLogger(nil, "BarHistory"),
	}
}

// -----------------------------------------------------------------------------

// AddBar appends a bar to the symbol's buffer, creating it on first sight.
func (bh *BarHistory) AddBar(symbol string, bar models.MBar) {
	bh.mu.Lock()
	defer bh.mu.Unlock()

	if _, ok := bh.Streams[symbol]; !ok {
		bh.Streams[symbol] = NewRingBuffer(symbol, bh.MaxPoints)
	}

	bh.Streams[symbol].Append(bar)
}

// -----------------------------------------------------------------------------

// GetBars returns the full buffered history for a symbol, oldest first.
func (bh *BarHistory) GetBars(symbol string) []models.MBar {
	bh.mu.RLock()
	defer bh.mu.RUnlock()

	buffer, ok := bh.Streams[symbol]
	if !ok || buffer.Size() == 0 {
		return nil
	}
	return buffer.GetAll()
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent bars for a symbol.
func (bh *BarHistory) GetLatest(symbol string, n int) []models.MBar {
	bh.mu.RLock()
	defer bh.mu.RUnlock()

	buffer, ok := bh.Streams[symbol]
	if !ok {
		return nil
	}
	return buffer.GetLatest(n)
}

// -----------------------------------------------------------------------------

// Snapshot returns the buffered history for every symbol with data.
func (bh *BarHistory) Snapshot() map[string][]models.MBar {
	bh.mu.RLock()
	defer bh.mu.RUnlock()

	result := make(map[string][]models.MBar, len(bh.Streams))
	for symbol, buffer := range bh.Streams {
		if buffer.Size() == 0 {
			continue
		}
		result[symbol] = buffer.GetAll()
	}
	return result
}

// -----------------------------------------------------------------------------

// HasSymbol checks if symbol exists
func (bh *BarHistory) HasSymbol(symbol string) bool {
	bh.mu.RLock()
	defer bh.mu.RUnlock()

	_, ok := bh.Streams[symbol]
	return ok
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with data
func (bh *BarHistory) SymbolCount() int {
	bh.mu.RLock()
	defer bh.mu.RUnlock()

	return len(bh.Streams)
}

// -----------------------------------------------------------------------------

// Cleanup clears all buffered data.
func (bh *BarHistory) Cleanup() {
	bh.mu.Lock()
	defer bh.mu.Unlock()

	bh.Streams = make(map[string]*RingBuffer)
}
