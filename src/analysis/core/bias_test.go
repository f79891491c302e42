package core

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func biasBar(ts int64, close float64) models.MBar {
	return models.MBar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    10,
	}
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasLongTrending(t *testing.T) {
	// Rising closes with equilibrium at 12 and range 6: the last close at 14
	// sits in the outer quarter with the recent mean on the same side.
	bars := []models.MBar{
		biasBar(100, 11),
		biasBar(200, 12),
		biasBar(300, 13),
		biasBar(400, 14),
	}
	ext := &models.MSessionExtremes{High: 15, HighTimestamp: 100, Low: 9, LowTimestamp: 100}

	bias, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionLong, bias.Direction)
	assert.Equal(t, models.StateTrending, bias.Structure.State)
	assert.False(t, bias.IntoEquilibrium)
	assert.Equal(t, "long", bias.Token())
	assert.True(t, bias.Directional())
	assert.Equal(t, "TEST", bias.Symbol)
	assert.Equal(t, int64(400), bias.AsOf)
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasNeutralBand(t *testing.T) {
	// Last close within 10% of the range around equilibrium stays neutral.
	bars := []models.MBar{
		biasBar(100, 12.3),
	}
	ext := &models.MSessionExtremes{High: 15, Low: 9}

	bias, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionNeutral, bias.Direction)
	assert.Equal(t, models.StateBalanced, bias.Structure.State)
	assert.False(t, bias.IntoEquilibrium)
	assert.Equal(t, "neutral", bias.Token())
	assert.False(t, bias.Directional())
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasShortIntoEquilibrium(t *testing.T) {
	// Price bounced well off the session low but still below equilibrium.
	bars := []models.MBar{
		biasBar(100, 9.5),
		biasBar(200, 11),
	}
	ext := &models.MSessionExtremes{High: 15, Low: 9}

	bias, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionShort, bias.Direction)
	assert.True(t, bias.IntoEquilibrium, "pullback of 2.0 exceeds a quarter of the 6.0 range")
	assert.Equal(t, "short-into-eq", bias.Token())
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasDegenerateRange(t *testing.T) {
	// Single-price session: range is zero, bias stays neutral.
	bars := []models.MBar{biasBar(100, 10)}
	ext := &models.MSessionExtremes{High: 10, Low: 10}

	bias, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionNeutral, bias.Direction)
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasErrors(t *testing.T) {
	ext := &models.MSessionExtremes{High: 15, Low: 9}

	_, err := CalculateDailyBias(nil, ext)
	assert.Error(t, err)

	_, err = CalculateDailyBias([]models.MBar{biasBar(100, 10)}, nil)
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestCalculateDailyBiasDeterministic(t *testing.T) {
	bars := []models.MBar{
		biasBar(100, 11),
		biasBar(200, 13.5),
		biasBar(300, 14),
	}
	ext := &models.MSessionExtremes{High: 15, Low: 9}

	first, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)
	second, err := CalculateDailyBias(bars, ext)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
