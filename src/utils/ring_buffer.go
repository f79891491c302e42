package utils

import (
	"market-structure/src/models"
)

// Row layout of the buffer's numeric storage.
const (
	rbIdxTimestamp = 0
	rbIdxOpen      = 1
	rbIdxHigh      = 2
	rbIdxLow       = 3
	rbIdxClose     = 4
	rbIdxVolume    = 5
	rbIdxFetched   = 6
	rbNumFeatures  = 7
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of bars.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type RingBuffer struct {
	symbol   string
	data     [][rbNumFeatures]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(symbol string, capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &RingBuffer{
		symbol:   symbol,
		data:     make([][rbNumFeatures]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a bar, overwriting the oldest entry once the buffer is full.
func (rb *RingBuffer) Append(bar models.MBar) {
	rb.data[rb.index] = [rbNumFeatures]float64{
		float64(bar.Timestamp),
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
		float64(bar.FetchedAt),
	}

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent bars in chronological order.
func (rb *RingBuffer) GetLatest(n int) []models.MBar {
	if rb.size == 0 || n <= 0 {
		return []models.MBar{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MBar, count)

	// Latest data sits just before the write index.
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rb.barAt(idx)
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all bars in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MBar {
	if rb.size == 0 {
		return []models.MBar{}
	}

	result := make([]models.MBar, rb.size)

	// Oldest element: at the write index when full, at zero otherwise.
	var startIdx int
	if rb.size == rb.capacity {
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rb.barAt(idx)
	}

	return result
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) barAt(idx int) models.MBar {
	row := rb.data[idx]
	return models.MBar{
		Symbol:    rb.symbol,
		Timestamp: int64(row[rbIdxTimestamp]),
		Open:      row[rbIdxOpen],
		High:      row[rbIdxHigh],
		Low:       row[rbIdxLow],
		Close:     row[rbIdxClose],
		Volume:    row[rbIdxVolume],
		FetchedAt: int64(row[rbIdxFetched]),
	}
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
