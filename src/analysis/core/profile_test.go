package core

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileBias(direction string, intoEQ bool, state string) models.MBias {
	return models.MBias{
		Symbol:          "TEST",
		AsOf:            400,
		Direction:       direction,
		IntoEquilibrium: intoEQ,
		Structure:       models.MStructure{State: state},
	}
}

// -----------------------------------------------------------------------------

func TestClassifyDayProfileLabels(t *testing.T) {
	cases := []struct {
		name      string
		direction string
		intoEQ    bool
		want      string
	}{
		{"neutral is P3", models.DirectionNeutral, false, models.ProfileP3},
		{"neutral into-eq still P3", models.DirectionNeutral, true, models.ProfileP3},
		{"long into-eq is P2", models.DirectionLong, true, models.ProfileP2},
		{"short into-eq is P2", models.DirectionShort, true, models.ProfileP2},
		{"long is P1", models.DirectionLong, false, models.ProfileP1},
		{"short is P1", models.DirectionShort, false, models.ProfileP1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ClassifyDayProfile(models.MProfileInputs{
				Bias: profileBias(tc.direction, tc.intoEQ, models.StateBalanced),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Profile)
		})
	}
}

// -----------------------------------------------------------------------------

func TestClassifyDayProfileTargets(t *testing.T) {
	cases := []struct {
		name          string
		direction     string
		intoEQ        bool
		wantPrimary   string
		wantSecondary string
	}{
		{"P1 long", models.DirectionLong, false, models.TargetPriorDayHigh, models.TargetPriorSessionHigh},
		{"P1 short", models.DirectionShort, false, models.TargetPriorDayLow, models.TargetPriorSessionLow},
		{"P2 long", models.DirectionLong, true, models.TargetCurrentEQRetest, models.TargetPriorSessionLow},
		{"P2 short", models.DirectionShort, true, models.TargetCurrentEQRetest, models.TargetPriorSessionHigh},
		{"P3 fallback", models.DirectionNeutral, false, models.TargetPriorDayEQ, models.TargetOppositeExtreme},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ClassifyDayProfile(models.MProfileInputs{
				Bias: profileBias(tc.direction, tc.intoEQ, models.StateTrending),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantPrimary, result.Targets.Primary)
			assert.Equal(t, tc.wantSecondary, result.Targets.Secondary)
		})
	}
}

// -----------------------------------------------------------------------------

func TestClassifyDayProfileRationale(t *testing.T) {
	p1, err := ClassifyDayProfile(models.MProfileInputs{
		Bias: profileBias(models.DirectionLong, false, models.StateTrending),
	})
	require.NoError(t, err)
	require.Len(t, p1.Rationale, 1)
	assert.Equal(t, "trending structure with price aligned to trend → expect directional expansion", p1.Rationale[0])

	p2, err := ClassifyDayProfile(models.MProfileInputs{
		Bias: profileBias(models.DirectionShort, true, models.StateBalanced),
	})
	require.NoError(t, err)
	require.Len(t, p2.Rationale, 1)
	assert.Equal(t, "balanced structure but price away from EQ → anticipate rotation to equilibrium then continuation", p2.Rationale[0])

	p3, err := ClassifyDayProfile(models.MProfileInputs{
		Bias: profileBias(models.DirectionNeutral, false, models.StateBalanced),
	})
	require.NoError(t, err)
	require.Len(t, p3.Rationale, 1)
	assert.Equal(t, "Mixed structure context → expect balanced profile targeting opposing liquidity.", p3.Rationale[0])
}

// -----------------------------------------------------------------------------

func TestClassifyDayProfileEchoesSessionMapAndIgnoresLastPrice(t *testing.T) {
	sessions := map[string]models.MTimeWindow{
		models.SessionCurrent: {Start: 100, End: 400},
		models.SessionPrior:   {Start: 0, End: 99},
	}

	withLow, err := ClassifyDayProfile(models.MProfileInputs{
		Bias:       profileBias(models.DirectionLong, false, models.StateTrending),
		SessionMap: sessions,
		LastPrice:  1,
	})
	require.NoError(t, err)

	withHigh, err := ClassifyDayProfile(models.MProfileInputs{
		Bias:       profileBias(models.DirectionLong, false, models.StateTrending),
		SessionMap: sessions,
		LastPrice:  1000000,
	})
	require.NoError(t, err)

	assert.Equal(t, sessions, withLow.SessionMap)
	assert.Equal(t, withLow, withHigh, "last price must not influence the classification")
}

// -----------------------------------------------------------------------------

func TestClassifyDayProfileMalformedBias(t *testing.T) {
	_, err := ClassifyDayProfile(models.MProfileInputs{
		Bias: models.MBias{Direction: models.DirectionLong}, // no symbol
	})
	assert.Error(t, err)

	_, err = ClassifyDayProfile(models.MProfileInputs{
		Bias: models.MBias{Symbol: "TEST", Direction: "sideways"},
	})
	assert.Error(t, err)
}
