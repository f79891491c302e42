package core

import (
	"fmt"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// Day profile classification
// -----------------------------------------------------------------------------

// ClassifyDayProfile assigns a day-type profile to a bias classification.
//
// Label rule, in priority order:
//  1. neutral direction           -> P3
//  2. into-equilibrium pullback   -> P2
//  3. otherwise                   -> P1
//
// The session map is echoed into the result unchanged and LastPrice is not
// consulted by the label rule (kept on the input for interface compatibility).
// The only error path is a missing or malformed bias.
func ClassifyDayProfile(in models.MProfileInputs) (models.MDayProfile, error) {
	bias := in.Bias
	if bias.Symbol == "" {
		return models.MDayProfile{}, fmt.Errorf("day profile: bias is missing a symbol")
	}
	switch bias.Direction {
	case models.DirectionLong, models.DirectionShort, models.DirectionNeutral:
	default:
		return models.MDayProfile{}, fmt.Errorf("day profile: unknown bias direction %q", bias.Direction)
	}

	result := models.MDayProfile{
		Symbol:     bias.Symbol,
		AsOf:       bias.AsOf,
		SessionMap: in.SessionMap,
	}

	switch {
	case bias.Direction == models.DirectionNeutral:
		result.Profile = models.ProfileP3
	case bias.IntoEquilibrium:
		result.Profile = models.ProfileP2
	default:
		result.Profile = models.ProfileP1
	}

	result.Targets = selectTargets(result.Profile, bias.Direction)
	result.Rationale = []string{rationaleFor(result.Profile, bias.Structure.State)}

	return result, nil
}

// -----------------------------------------------------------------------------

// selectTargets maps (label, direction) to named price targets. The final
// case doubles as the fallback row for non-directional biases.
func selectTargets(profile, direction string) models.MTargets {
	switch {
	case profile == models.ProfileP1 && direction == models.DirectionLong:
		return models.MTargets{
			Primary:   models.TargetPriorDayHigh,
			Secondary: models.TargetPriorSessionHigh,
		}
	case profile == models.ProfileP1 && direction == models.DirectionShort:
		return models.MTargets{
			Primary:   models.TargetPriorDayLow,
			Secondary: models.TargetPriorSessionLow,
		}
	case profile == models.ProfileP2 && direction == models.DirectionLong:
		return models.MTargets{
			Primary:   models.TargetCurrentEQRetest,
			Secondary: models.TargetPriorSessionLow,
		}
	case profile == models.ProfileP2 && direction == models.DirectionShort:
		return models.MTargets{
			Primary:   models.TargetCurrentEQRetest,
			Secondary: models.TargetPriorSessionHigh,
		}
	default:
		return models.MTargets{
			Primary:   models.TargetPriorDayEQ,
			Secondary: models.TargetOppositeExtreme,
		}
	}
}

// -----------------------------------------------------------------------------

func rationaleFor(profile, state string) string {
	switch profile {
	case models.ProfileP1:
		return fmt.Sprintf("%s structure with price aligned to trend → expect directional expansion", state)
	case models.ProfileP2:
		return fmt.Sprintf("%s structure but price away from EQ → anticipate rotation to equilibrium then continuation", state)
	default:
		return "Mixed structure context → expect balanced profile targeting opposing liquidity."
	}
}
