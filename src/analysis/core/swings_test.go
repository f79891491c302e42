package core

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barsFromHL builds a series from (high, low) pairs with 60s spacing.
func barsFromHL(hl [][2]float64) []models.MBar {
	bars := make([]models.MBar, 0, len(hl))
	for i, pair := range hl {
		h, l := pair[0], pair[1]
		bars = append(bars, models.MBar{
			Symbol:    "TEST",
			Timestamp: int64(1000 + i*60),
			Open:      l,
			High:      h,
			Low:       l,
			Close:     h,
			Volume:    100,
		})
	}
	return bars
}

// -----------------------------------------------------------------------------

func TestDetectSwingsFindsLocalExtremes(t *testing.T) {
	// Highs peak at index 2, lows trough at index 2 as well.
	bars := barsFromHL([][2]float64{
		{10, 9.5},
		{11, 9.0},
		{13, 8.0},
		{11, 9.0},
		{10, 9.5},
	})

	swings, err := DetectSwings(bars, 2)
	require.NoError(t, err)
	require.Len(t, swings, 2)

	assert.Equal(t, models.SwingHigh, swings[0].Type)
	assert.Equal(t, 2, swings[0].Index)
	assert.Equal(t, 13.0, swings[0].Price)

	assert.Equal(t, models.SwingLow, swings[1].Type)
	assert.Equal(t, 2, swings[1].Index)
	assert.Equal(t, 8.0, swings[1].Price)
}

// -----------------------------------------------------------------------------

func TestDetectSwingsTiesNeverQualify(t *testing.T) {
	// Two equal highs next to each other: neither strictly dominates.
	bars := barsFromHL([][2]float64{
		{10, 9},
		{12, 9},
		{12, 9},
		{10, 9},
		{10, 9},
	})

	swings, err := DetectSwings(bars, 1)
	require.NoError(t, err)

	for _, s := range swings {
		assert.NotEqual(t, models.SwingHigh, s.Type, "tied highs must not be labeled")
	}
}

// -----------------------------------------------------------------------------

func TestDetectSwingsSkipsBoundaries(t *testing.T) {
	// Global maximum sits at index 0 but has no left context.
	bars := barsFromHL([][2]float64{
		{20, 10},
		{11, 10},
		{12, 10},
		{11, 10},
	})

	swings, err := DetectSwings(bars, 1)
	require.NoError(t, err)

	for _, s := range swings {
		assert.Greater(t, s.Index, 0)
		assert.Less(t, s.Index, len(bars)-1)
	}
}

// -----------------------------------------------------------------------------

func TestDetectSwingsWideRangeBarIsBoth(t *testing.T) {
	// Index 1 has the highest high and the lowest low of its neighborhood.
	bars := barsFromHL([][2]float64{
		{10, 9},
		{15, 5},
		{10, 9},
	})

	swings, err := DetectSwings(bars, 1)
	require.NoError(t, err)
	require.Len(t, swings, 2)

	// High emitted before low for the same index.
	assert.Equal(t, models.SwingHigh, swings[0].Type)
	assert.Equal(t, models.SwingLow, swings[1].Type)
	assert.Equal(t, swings[0].Index, swings[1].Index)
}

// -----------------------------------------------------------------------------

func TestDetectSwingsErrors(t *testing.T) {
	_, err := DetectSwings(nil, 2)
	assert.Error(t, err)

	_, err = DetectSwings(barsFromHL([][2]float64{{10, 9}}), 0)
	assert.Error(t, err)

	_, err = DetectSwings(barsFromHL([][2]float64{{10, 9}}), -1)
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestDetectSwingsDeterministic(t *testing.T) {
	bars := barsFromHL([][2]float64{
		{10, 9}, {12, 8}, {11, 9}, {14, 7}, {12, 9}, {13, 8}, {10, 9},
	})

	first, err := DetectSwings(bars, 2)
	require.NoError(t, err)
	second, err := DetectSwings(bars, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
