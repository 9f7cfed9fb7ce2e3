package usecase

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/model/auth"
	"github.com/engenharia-apr/aprd/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// RebuildResult summarizes one risk item rebuild
type RebuildResult struct {
	Created int
	Invalid int
}

// RebuildRiskItems regenerates the APR's derived risk items from its
// current steps. The previous set is discarded wholesale; an assessed
// probability/severity carries over only when the regenerated item has
// the same step, description and hazard link as before.
func (uc *UseCases) RebuildRiskItems(ctx context.Context, aprID int64) (*RebuildResult, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.editableAPR(ctx, token.TenantID, aprID); err != nil {
		return nil, err
	}

	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return nil, err
	}

	return uc.rebuildRiskItems(ctx, token.TenantID, aprID, lookup)
}

type riskItemIdentity struct {
	stepID   int64
	riskKey  string
	hazardID int64
}

// rebuildRiskItems walks the steps in sequence order and derives one
// risk item per risk description. A resolved catalog hazard contributes
// its default probability and severity; an unresolved one yields the
// zero pair, which scores as invalid and blocks finalization until
// overridden. An override is an explicit assessment: when a regenerated
// item matches a previous item's identity and the stored pair is within
// matrix bounds, the stored pair wins over catalog defaults, so that
// rebuilding with unchanged steps reproduces the same scores.
func (uc *UseCases) rebuildRiskItems(ctx context.Context, tenantID string, aprID int64, lookup model.HazardLookup) (*RebuildResult, error) {
	steps, err := uc.repo.Step().ListByAPR(ctx, tenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list steps for rebuild", goerr.V(AprIDKey, aprID))
	}

	previous, err := uc.repo.RiskItem().ListByAPR(ctx, tenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk items for rebuild", goerr.V(AprIDKey, aprID))
	}
	assessed := make(map[riskItemIdentity]*model.RiskItem, len(previous))
	for _, item := range previous {
		if item.Valid(uc.matrix) {
			assessed[riskItemIdentity{item.StepID, model.NormalizedKey(item.RiskDescription), item.HazardID}] = item
		}
	}

	var items []*model.RiskItem
	result := &RebuildResult{}
	for _, step := range steps {
		hazards := step.HazardList()
		for _, risk := range step.RiskList() {
			item := &model.RiskItem{
				AprID:           aprID,
				StepID:          step.ID,
				RiskDescription: risk,
			}

			if hazardID, ok := model.ResolveHazard(risk, hazards, lookup); ok {
				hazard, err := uc.repo.Hazard().Get(ctx, hazardID)
				if err != nil {
					return nil, goerr.Wrap(err, "failed to load resolved hazard",
						goerr.V("hazard_id", hazardID))
				}
				item.HazardID = hazardID
				item.Probability = hazard.DefaultProbability
				item.Severity = hazard.DefaultSeverity
			}

			key := riskItemIdentity{step.ID, model.NormalizedKey(risk), item.HazardID}
			if prev, ok := assessed[key]; ok {
				item.Probability = prev.Probability
				item.Severity = prev.Severity
			}

			item.Score, item.Level = uc.matrix.Compute(item.Probability, item.Severity)
			if !item.Valid(uc.matrix) {
				result.Invalid++
			}
			items = append(items, item)
		}
	}

	if _, err := uc.repo.RiskItem().ReplaceForAPR(ctx, tenantID, aprID, items); err != nil {
		return nil, goerr.Wrap(err, "failed to replace risk items", goerr.V(AprIDKey, aprID))
	}
	result.Created = len(items)

	logging.From(ctx).Debug("rebuilt risk items",
		"apr_id", aprID, "created", result.Created, "invalid", result.Invalid)

	return result, nil
}

// ListRiskItems retrieves the APR's derived risk items
func (uc *UseCases) ListRiskItems(ctx context.Context, aprID int64) ([]*model.RiskItem, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.getAPR(ctx, token.TenantID, aprID); err != nil {
		return nil, err
	}

	items, err := uc.repo.RiskItem().ListByAPR(ctx, token.TenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk items", goerr.V(AprIDKey, aprID))
	}
	return items, nil
}
