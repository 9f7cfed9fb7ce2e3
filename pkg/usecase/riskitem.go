package usecase

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
	"github.com/m-mizutani/goerr/v2"
)

// OverrideRiskItem patches one risk item's probability and severity,
// recomputing score and level through the matrix. An override producing
// the invalid level is rejected outright; a stored item is never made
// worse by an override.
func (uc *UseCases) OverrideRiskItem(ctx context.Context, id int64, probability, severity int) (*model.RiskItem, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	item, err := uc.repo.RiskItem().Get(ctx, token.TenantID, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("risk_item_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk item", goerr.V("risk_item_id", id))
	}

	if _, err := uc.editableAPR(ctx, token.TenantID, item.AprID); err != nil {
		return nil, err
	}

	score, level := uc.matrix.Compute(probability, severity)
	if level == config.LevelInvalid {
		return nil, goerr.Wrap(ErrRiskScoreInvalid, "override out of matrix bounds",
			goerr.V("probability", probability), goerr.V("severity", severity))
	}

	item.Probability = probability
	item.Severity = severity
	item.Score = score
	item.Level = level

	updated, err := uc.repo.RiskItem().Update(ctx, token.TenantID, item)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk item", goerr.V("risk_item_id", id))
	}

	uc.recordEvent(ctx, token, item.AprID, model.EventItemOverride, map[string]any{
		"risk_item_id": id,
		"probability":  probability,
		"severity":     severity,
		"score":        score,
		"level":        level,
	})

	return updated, nil
}
