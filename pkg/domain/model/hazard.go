package model

import (
	"strings"
	"time"
)

// Hazard is an admin-managed catalog entry: a named hazard with default
// probability/severity and reference consequences/safeguards. Read-only
// from the risk engine.
type Hazard struct {
	ID                 int64
	Name               string
	HazardType         string
	DefaultProbability int
	DefaultSeverity    int
	Consequences       []string
	Safeguards         []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HazardLookup maps normalized hazard names to catalog entries. It is
// rebuilt fresh from the full catalog per operation, never cached across
// operations.
type HazardLookup map[string]*Hazard

// BuildHazardLookup indexes catalog entries by normalized name
func BuildHazardLookup(hazards []*Hazard) HazardLookup {
	lookup := make(HazardLookup, len(hazards))
	for _, hazard := range hazards {
		key := NormalizedKey(hazard.Name)
		if key == "" {
			continue
		}
		lookup[key] = hazard
	}
	return lookup
}

// NormalizeHazardNames normalizes free-text hazard names against the
// lookup: entries matching a catalog hazard take the catalog spelling,
// duplicates are dropped, empties removed.
func NormalizeHazardNames(values []string, lookup HazardLookup) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, raw := range values {
		text := NormalizeText(raw, false)
		if text == "" {
			continue
		}
		candidate := text
		if hazard, ok := lookup[NormalizedKey(text)]; ok {
			candidate = hazard.Name
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// ResolveHazard links a risk description to at most one catalog hazard.
// Candidates not present in the lookup are discarded; a single known
// candidate wins; multiple known candidates disambiguate by
// case-insensitive containment of the catalog name in the description.
// Ambiguity returns no link rather than a guess.
func ResolveHazard(riskDescription string, candidates []string, lookup HazardLookup) (int64, bool) {
	known := make([]*Hazard, 0, len(candidates))
	for _, candidate := range candidates {
		key := NormalizedKey(candidate)
		if key == "" {
			continue
		}
		if hazard, ok := lookup[key]; ok {
			known = append(known, hazard)
		}
	}

	switch len(known) {
	case 0:
		return 0, false
	case 1:
		return known[0].ID, true
	}

	descLower := strings.ToLower(riskDescription)
	var matched int64
	var matches int
	for _, hazard := range known {
		if hazard.Name != "" && strings.Contains(descLower, strings.ToLower(hazard.Name)) {
			matched = hazard.ID
			matches++
		}
	}
	if matches == 1 {
		return matched, true
	}
	return 0, false
}
