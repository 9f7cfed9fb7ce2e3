package model

import (
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/types"
)

// APR is the aggregate root: a risk-assessment document for one hazardous
// activity, owned by a single tenant. Steps and risk items belong to it
// exclusively.
type APR struct {
	ID              int64
	TenantID        string
	Title           string
	RiskCategory    string
	Description     string
	Worksite        string
	Sector          string
	Responsible     string
	Date            string
	ActivityID      string
	ActivityName    string
	Status          types.Status
	TemplateVersion string
	SourceHashes    map[string]string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MissingRequiredFields returns the names of required top-level fields
// that are absent or blank, in finalization check order.
func (a *APR) MissingRequiredFields() []string {
	var missing []string
	check := func(field, value string) {
		if NormalizeText(value, false) == "" {
			missing = append(missing, field)
		}
	}
	check("sector", a.Sector)
	check("worksite", a.Worksite)
	check("responsible", a.Responsible)
	check("date", a.Date)
	check("activity_id", a.ActivityID)
	check("activity_name", a.ActivityName)
	check("title", a.Title)
	check("risk_category", a.RiskCategory)
	check("description", a.Description)
	return missing
}
