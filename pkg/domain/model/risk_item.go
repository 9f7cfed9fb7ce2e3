package model

import (
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
)

// RiskItem is a derived record pairing one risk description from a step
// with a probability/severity score and banded level. Items are deleted
// and recreated wholesale on every rebuild; only probability/severity
// overrides patch one in place, and an override survives rebuilds that
// regenerate the same item. HazardID is a lookup reference, zero when
// no catalog hazard resolved.
type RiskItem struct {
	ID              int64
	AprID           int64
	StepID          int64
	TenantID        string
	HazardID        int64
	RiskDescription string
	Probability     int
	Severity        int
	Score           int
	Level           string
	UpdatedAt       time.Time
}

// Valid reports whether recomputing from the stored probability and
// severity reproduces the stored score and level, and the level is not
// the invalid sentinel. Catches out-of-range values and stale or
// tampered stored scores alike.
func (i *RiskItem) Valid(matrix *config.RiskMatrix) bool {
	if i == nil {
		return false
	}
	score, level := matrix.Compute(i.Probability, i.Severity)
	if level == config.LevelInvalid {
		return false
	}
	return i.Score == score && i.Level == level
}

// HasInvalidRiskItems reports whether any item in the set fails Valid
func HasInvalidRiskItems(items []*RiskItem, matrix *config.RiskMatrix) bool {
	for _, item := range items {
		if !item.Valid(matrix) {
			return true
		}
	}
	return false
}
