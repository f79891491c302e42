package helpers

import (
	"errors"
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBar(ts int64) models.MBar {
	return models.MBar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      10,
		High:      12,
		Low:       9,
		Close:     11,
		Volume:    100,
	}
}

// -----------------------------------------------------------------------------

func TestValidateBarAcceptsWellFormed(t *testing.T) {
	assert.NoError(t, ValidateBar(validBar(100)))
}

// -----------------------------------------------------------------------------

func TestValidateBarRejectsBrokenInvariants(t *testing.T) {
	highBelowLow := validBar(100)
	highBelowLow.High = 8
	highBelowLow.Low = 9
	highBelowLow.Open = 8
	highBelowLow.Close = 8
	assert.Error(t, ValidateBar(highBelowLow))

	highBelowClose := validBar(100)
	highBelowClose.Close = 13
	assert.Error(t, ValidateBar(highBelowClose))

	lowAboveOpen := validBar(100)
	lowAboveOpen.Low = 10.5
	assert.Error(t, ValidateBar(lowAboveOpen))

	negativeVolume := validBar(100)
	negativeVolume.Volume = -1
	assert.Error(t, ValidateBar(negativeVolume))
}

// -----------------------------------------------------------------------------

func TestValidateBarsChronologicalOrder(t *testing.T) {
	ordered := []models.MBar{validBar(100), validBar(200), validBar(200), validBar(300)}
	assert.NoError(t, ValidateBars(ordered), "equal timestamps are tolerated")

	unordered := []models.MBar{validBar(200), validBar(100)}
	err := ValidateBars(unordered)
	require.Error(t, err)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr), "validation failures carry ValidationError")
}
