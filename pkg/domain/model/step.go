package model

import "time"

// Step is one ordered unit of work within an APR. The list fields are
// free text, semicolon separated; any mutation invalidates the APR's
// derived risk items until the next rebuild.
type Step struct {
	ID          int64
	AprID       int64
	TenantID    string
	Order       int
	Description string
	Hazards     string
	Risks       string
	Controls    string
	PPE         string
	Regulations string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HazardList returns the step's hazard entries, split and normalized
func (s *Step) HazardList() []string {
	return SplitList(s.Hazards)
}

// RiskList returns the step's risk descriptions, split and normalized
func (s *Step) RiskList() []string {
	return SplitList(s.Risks)
}

// ControlList returns the step's control/measure entries, split and normalized
func (s *Step) ControlList() []string {
	return SplitList(s.Controls)
}
