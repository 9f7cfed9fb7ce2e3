package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Status represents the lifecycle state of an APR
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusFinal     Status = "final"
	StatusArchived  Status = "archived"
)

// statusAliases folds every external spelling (including the legacy
// pt-BR storage labels) into the canonical status. This is the single
// mapping table; no other code compares raw status strings.
var statusAliases = map[string]Status{
	"draft":     StatusDraft,
	"rascunho":  StatusDraft,
	"submitted": StatusSubmitted,
	"enviado":   StatusSubmitted,
	"approved":  StatusApproved,
	"aprovado":  StatusApproved,
	"rejected":  StatusRejected,
	"reprovado": StatusRejected,
	"final":     StatusFinal,
	"archived":  StatusArchived,
	"arquivado": StatusArchived,
}

// statusTransitions is the lifecycle transition table. Finalization is
// deliberately not listed: StatusFinal is reached only through the
// finalization gate, from an editable state.
var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted, StatusArchived},
	StatusSubmitted: {StatusApproved, StatusRejected, StatusArchived},
	StatusRejected:  {StatusDraft, StatusArchived},
	StatusApproved:  {StatusArchived},
	StatusFinal:     {StatusArchived},
	StatusArchived:  {},
}

// AllStatuses returns all valid statuses
func AllStatuses() []Status {
	return []Status{
		StatusDraft,
		StatusSubmitted,
		StatusApproved,
		StatusRejected,
		StatusFinal,
		StatusArchived,
	}
}

// ParseStatus parses a string into a canonical Status, folding aliases
func ParseStatus(s string) (Status, error) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", goerr.New("invalid status", goerr.V("status", s))
	}
	return status, nil
}

// Normalize returns the status, treating empty as StatusDraft for backward compatibility.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusDraft
	}
	if folded, ok := statusAliases[strings.ToLower(string(s))]; ok {
		return folded
	}
	return s
}

// IsValid checks if the status is one of the canonical values
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusFinal, StatusArchived:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the transition table allows moving to next
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s.Normalize()] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the outgoing edges of the status
func (s Status) AllowedTransitions() []Status {
	allowed := statusTransitions[s.Normalize()]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// Editable reports whether steps and risk items may be mutated in this state
func (s Status) Editable() bool {
	switch s.Normalize() {
	case StatusDraft, StatusRejected:
		return true
	default:
		return false
	}
}

// Exportable reports whether document export is permitted in this state
func (s Status) Exportable() bool {
	switch s.Normalize() {
	case StatusApproved, StatusFinal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
