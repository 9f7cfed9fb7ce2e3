package memory

import (
	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Sentinel errors shared by the in-memory repositories
var (
	ErrNotFound       = interfaces.ErrNotFound
	ErrDuplicateOrder = interfaces.ErrDuplicateOrder
)

type Memory struct {
	apr      *aprRepository
	step     *stepRepository
	riskItem *riskItemRepository
	hazard   *hazardRepository
	event    *eventRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	stepRepo := newStepRepository()
	riskItemRepo := newRiskItemRepository()
	eventRepo := newEventRepository()
	aprRepo := newAPRRepository(stepRepo, riskItemRepo, eventRepo)

	return &Memory{
		apr:      aprRepo,
		step:     stepRepo,
		riskItem: riskItemRepo,
		hazard:   newHazardRepository(),
		event:    eventRepo,
	}
}

func (m *Memory) APR() interfaces.APRRepository {
	return m.apr
}

func (m *Memory) Step() interfaces.StepRepository {
	return m.step
}

func (m *Memory) RiskItem() interfaces.RiskItemRepository {
	return m.riskItem
}

func (m *Memory) Hazard() interfaces.HazardRepository {
	return m.hazard
}

func (m *Memory) Event() interfaces.EventRepository {
	return m.event
}

func (m *Memory) Close() error {
	return nil
}
