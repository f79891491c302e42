package core

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionBar(ts int64, high, low float64) models.MBar {
	return models.MBar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      low,
		High:      high,
		Low:       low,
		Close:     high,
		Volume:    10,
	}
}

// -----------------------------------------------------------------------------

func TestExtractSessionExtremesBasic(t *testing.T) {
	bars := []models.MBar{
		sessionBar(100, 11, 10),
		sessionBar(200, 15, 9),
		sessionBar(300, 12, 10),
	}

	ext := ExtractSessionExtremes(bars, models.MTimeWindow{Start: 100, End: 300})
	require.NotNil(t, ext)

	assert.Equal(t, 15.0, ext.High)
	assert.Equal(t, int64(200), ext.HighTimestamp)
	assert.Equal(t, 9.0, ext.Low)
	assert.Equal(t, int64(200), ext.LowTimestamp)
	assert.Equal(t, 12.0, ext.Equilibrium())
	assert.Equal(t, 6.0, ext.Range())
}

// -----------------------------------------------------------------------------

func TestExtractSessionExtremesAbsentWindow(t *testing.T) {
	// All bars fall before the window: the result is nil, not an error.
	bars := []models.MBar{
		sessionBar(100, 11, 10),
		sessionBar(200, 12, 9),
		sessionBar(300, 13, 10),
	}

	ext := ExtractSessionExtremes(bars, models.MTimeWindow{Start: 1000, End: 2000})
	assert.Nil(t, ext)
}

// -----------------------------------------------------------------------------

func TestExtractSessionExtremesInclusiveBounds(t *testing.T) {
	bars := []models.MBar{
		sessionBar(99, 100, 1), // just outside
		sessionBar(100, 11, 10),
		sessionBar(300, 12, 9),
		sessionBar(301, 100, 1), // just outside
	}

	ext := ExtractSessionExtremes(bars, models.MTimeWindow{Start: 100, End: 300})
	require.NotNil(t, ext)

	// Boundary bars at Start and End are in, neighbors are out.
	assert.Equal(t, 12.0, ext.High)
	assert.Equal(t, 9.0, ext.Low)
}

// -----------------------------------------------------------------------------

func TestExtractSessionExtremesEarliestWinsOnTie(t *testing.T) {
	bars := []models.MBar{
		sessionBar(100, 15, 9),
		sessionBar(200, 15, 9),
	}

	ext := ExtractSessionExtremes(bars, models.MTimeWindow{Start: 0, End: 1000})
	require.NotNil(t, ext)

	assert.Equal(t, int64(100), ext.HighTimestamp)
	assert.Equal(t, int64(100), ext.LowTimestamp)
}
