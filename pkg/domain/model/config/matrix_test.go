package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
)

func TestRiskMatrixCompute(t *testing.T) {
	matrix := config.DefaultRiskMatrix()

	t.Run("bands partition the score space", func(t *testing.T) {
		cases := []struct {
			prob, sev int
			score     int
			level     string
		}{
			{1, 1, 1, "baixo"},
			{1, 5, 5, "baixo"},
			{5, 1, 5, "baixo"},
			{2, 3, 6, "medio"},
			{3, 4, 12, "medio"},
			{3, 5, 15, "alto"},
			{5, 5, 25, "alto"},
		}
		for _, tc := range cases {
			score, level := matrix.Compute(tc.prob, tc.sev)
			gt.Number(t, score).Equal(tc.score)
			gt.Value(t, level).Equal(tc.level)
		}
	})

	t.Run("out of bounds yields invalid with zero score", func(t *testing.T) {
		cases := []struct{ prob, sev int }{
			{0, 3},
			{3, 0},
			{0, 0},
			{6, 3},
			{3, 6},
			{-1, 2},
		}
		for _, tc := range cases {
			score, level := matrix.Compute(tc.prob, tc.sev)
			gt.Number(t, score).Equal(0)
			gt.Value(t, level).Equal(config.LevelInvalid)
		}
	})

	t.Run("every in-bounds pair gets a band", func(t *testing.T) {
		for p := 1; p <= 5; p++ {
			for s := 1; s <= 5; s++ {
				score, level := matrix.Compute(p, s)
				gt.Number(t, score).Equal(p * s)
				gt.Value(t, level).NotEqual(config.LevelInvalid)
			}
		}
	})
}

func TestRiskMatrixValidate(t *testing.T) {
	t.Run("default matrix is valid", func(t *testing.T) {
		gt.NoError(t, config.DefaultRiskMatrix().Validate())
	})

	t.Run("gap in band coverage is rejected", func(t *testing.T) {
		matrix := &config.RiskMatrix{
			Probability: config.AxisBounds{Min: 1, Max: 5},
			Severity:    config.AxisBounds{Min: 1, Max: 5},
			Bands: []config.Band{
				{Min: 1, Max: 5, Level: "baixo"},
				{Min: 13, Max: 25, Level: "alto"},
			},
		}
		gt.Error(t, matrix.Validate())
	})

	t.Run("overlapping bands are rejected", func(t *testing.T) {
		matrix := &config.RiskMatrix{
			Probability: config.AxisBounds{Min: 1, Max: 5},
			Severity:    config.AxisBounds{Min: 1, Max: 5},
			Bands: []config.Band{
				{Min: 1, Max: 12, Level: "baixo"},
				{Min: 10, Max: 25, Level: "alto"},
			},
		}
		gt.Error(t, matrix.Validate())
	})

	t.Run("inverted axis bounds are rejected", func(t *testing.T) {
		matrix := config.DefaultRiskMatrix()
		matrix.Probability = config.AxisBounds{Min: 5, Max: 1}
		gt.Error(t, matrix.Validate())
	})
}
