package config

import (
	"github.com/m-mizutani/goerr/v2"
)

// LevelInvalid is the level assigned when probability or severity is out
// of bounds or no band covers the score. Zero on either axis is a
// "not assessed" sentinel and always yields LevelInvalid.
const LevelInvalid = "invalid"

// AxisBounds limits one axis of the risk matrix
type AxisBounds struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

// Band maps an inclusive score range to a risk level label
type Band struct {
	Min   int    `toml:"min"`
	Max   int    `toml:"max"`
	Level string `toml:"level"`
}

// RiskMatrix holds the scoring configuration: per-axis bounds and the
// ordered score bands. Bounds and bands are configuration data, not
// constants.
type RiskMatrix struct {
	Probability AxisBounds `toml:"probability"`
	Severity    AxisBounds `toml:"severity"`
	Bands       []Band     `toml:"band"`
}

// DefaultRiskMatrix returns the 5x5 matrix with the standard bands
func DefaultRiskMatrix() *RiskMatrix {
	return &RiskMatrix{
		Probability: AxisBounds{Min: 1, Max: 5},
		Severity:    AxisBounds{Min: 1, Max: 5},
		Bands: []Band{
			{Min: 1, Max: 5, Level: "baixo"},
			{Min: 6, Max: 12, Level: "medio"},
			{Min: 13, Max: 25, Level: "alto"},
		},
	}
}

// Compute returns the risk score and banded level for a probability and
// severity pair. Values outside the configured bounds (including the
// zero sentinel) yield (0, LevelInvalid). A score no band covers yields
// the score with LevelInvalid.
func (m *RiskMatrix) Compute(probability, severity int) (int, string) {
	if probability < m.Probability.Min || probability > m.Probability.Max {
		return 0, LevelInvalid
	}
	if severity < m.Severity.Min || severity > m.Severity.Max {
		return 0, LevelInvalid
	}

	score := probability * severity
	for _, band := range m.Bands {
		if band.Min <= score && score <= band.Max && band.Level != "" {
			return score, band.Level
		}
	}
	return score, LevelInvalid
}

// Levels returns the band labels in configured order
func (m *RiskMatrix) Levels() []string {
	levels := make([]string, 0, len(m.Bands))
	for _, band := range m.Bands {
		levels = append(levels, band.Level)
	}
	return levels
}

// Validate checks that the bounds are sane and the bands form a
// complete, non-overlapping partition of the reachable score range.
func (m *RiskMatrix) Validate() error {
	if m.Probability.Min < 1 || m.Probability.Max < m.Probability.Min {
		return goerr.New("invalid probability bounds",
			goerr.V("min", m.Probability.Min), goerr.V("max", m.Probability.Max))
	}
	if m.Severity.Min < 1 || m.Severity.Max < m.Severity.Min {
		return goerr.New("invalid severity bounds",
			goerr.V("min", m.Severity.Min), goerr.V("max", m.Severity.Max))
	}
	if len(m.Bands) == 0 {
		return goerr.New("risk matrix requires at least one band")
	}

	minScore := m.Probability.Min * m.Severity.Min
	maxScore := m.Probability.Max * m.Severity.Max

	covered := make(map[int]string)
	for _, band := range m.Bands {
		if band.Level == "" {
			return goerr.New("band level is required", goerr.V("min", band.Min), goerr.V("max", band.Max))
		}
		if band.Max < band.Min {
			return goerr.New("band range is inverted",
				goerr.V("min", band.Min), goerr.V("max", band.Max), goerr.V("level", band.Level))
		}
		for score := band.Min; score <= band.Max; score++ {
			if prev, ok := covered[score]; ok {
				return goerr.New("bands overlap",
					goerr.V("score", score), goerr.V("level", band.Level), goerr.V("previous", prev))
			}
			covered[score] = band.Level
		}
	}

	for score := minScore; score <= maxScore; score++ {
		if _, ok := covered[score]; !ok {
			return goerr.New("bands leave a score uncovered", goerr.V("score", score))
		}
	}

	return nil
}
