package interfaces

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors every Repository implementation wraps, so callers
// can match storage outcomes without knowing the backend
var (
	// ErrNotFound is returned when a record does not exist (or belongs
	// to another tenant, which is indistinguishable by design)
	ErrNotFound = goerr.New("record not found")

	// ErrDuplicateOrder is returned when an APR already holds a step at
	// the requested order
	ErrDuplicateOrder = goerr.New("step order already in use")
)

// Repository defines the interface for data persistence. All APR-scoped
// repositories take a tenant ID; a lookup through the wrong tenant
// behaves as not found, never as a silent filter.
type Repository interface {
	APR() APRRepository
	Step() StepRepository
	RiskItem() RiskItemRepository
	Hazard() HazardRepository
	Event() EventRepository

	Close() error
}
