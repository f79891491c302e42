package analysis

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleBarsFoldsWindows(t *testing.T) {
	bars := []models.MBar{
		{Symbol: "TEST", Timestamp: 0, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Symbol: "TEST", Timestamp: 1800, Open: 11, High: 14, Low: 10, Close: 13, Volume: 50},
		{Symbol: "TEST", Timestamp: 3600, Open: 13, High: 15, Low: 12, Close: 14, Volume: 75},
	}

	hourly := ResampleBars(bars, HourSeconds)
	require.Len(t, hourly, 2)

	first := hourly[0]
	assert.Equal(t, int64(0), first.Timestamp)
	assert.Equal(t, 10.0, first.Open)
	assert.Equal(t, 14.0, first.High)
	assert.Equal(t, 9.0, first.Low)
	assert.Equal(t, 13.0, first.Close)
	assert.Equal(t, 150.0, first.Volume)

	second := hourly[1]
	assert.Equal(t, int64(3600), second.Timestamp)
	assert.Equal(t, 13.0, second.Open)
	assert.Equal(t, 75.0, second.Volume)
}

// -----------------------------------------------------------------------------

func TestResampleBarsEmptyAndBadWindow(t *testing.T) {
	assert.Nil(t, ResampleBars(nil, HourSeconds))
	assert.Nil(t, ResampleBars([]models.MBar{{Timestamp: 0}}, 0))
}

// -----------------------------------------------------------------------------

func TestResampleDailySplitsUTCDays(t *testing.T) {
	bars := []models.MBar{
		{Symbol: "TEST", Timestamp: 100, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1},
		{Symbol: "TEST", Timestamp: DaySeconds + 100, Open: 10.5, High: 12, Low: 10, Close: 11, Volume: 1},
	}

	daily := ResampleDaily(bars)
	require.Len(t, daily, 2)
	assert.Equal(t, int64(0), daily[0].Timestamp)
	assert.Equal(t, DaySeconds, daily[1].Timestamp)
}

// -----------------------------------------------------------------------------

func TestCalculateWindowBoundaries(t *testing.T) {
	start, end := CalculateWindowBoundaries(3700, HourSeconds)
	assert.Equal(t, int64(3600), start)
	assert.Equal(t, int64(7200), end)
}
