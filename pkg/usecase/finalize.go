package usecase

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// FinalizeAPR runs the full integrity gate and, when every check
// passes, moves the document to the final state and stamps its
// provenance. Checks run in a fixed order and fail fast; a failed gate
// leaves the document untouched except for the fresh rebuild.
//
// The responsible confirmation is a deliberate re-entry of the stored
// responsible-party name, compared after normalization. It is never
// defaulted from the actor.
func (uc *UseCases) FinalizeAPR(ctx context.Context, id int64, responsibleConfirmation string) (*model.APR, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	apr, err := uc.editableAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, err
	}

	// Finalization always judges a fresh derivation, never a stale set
	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uc.rebuildRiskItems(ctx, token.TenantID, id, lookup); err != nil {
		return nil, err
	}

	if missing := apr.MissingRequiredFields(); len(missing) > 0 {
		return nil, goerr.Wrap(ErrValidation, "required field is missing",
			goerr.V(FieldKey, missing[0]), goerr.V(AprIDKey, id))
	}

	steps, err := uc.repo.Step().ListByAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list steps", goerr.V(AprIDKey, id))
	}
	if len(steps) == 0 {
		return nil, goerr.Wrap(ErrValidation, "apr has no steps",
			goerr.V(FieldKey, "steps"), goerr.V(AprIDKey, id))
	}
	for _, step := range steps {
		if len(step.HazardList()) == 0 {
			return nil, goerr.Wrap(ErrValidation, "step has no hazards",
				goerr.V(FieldKey, "hazards"), goerr.V(StepIDKey, step.ID))
		}
		if len(step.ControlList()) == 0 {
			return nil, goerr.Wrap(ErrValidation, "step has no controls",
				goerr.V(FieldKey, "controls"), goerr.V(StepIDKey, step.ID))
		}
	}

	items, err := uc.repo.RiskItem().ListByAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk items", goerr.V(AprIDKey, id))
	}
	if model.HasInvalidRiskItems(items, uc.matrix) {
		return nil, goerr.Wrap(ErrRiskScoreInvalid, "apr holds invalid risk scores",
			goerr.V(AprIDKey, id))
	}

	if model.NormalizedKey(responsibleConfirmation) != model.NormalizedKey(apr.Responsible) {
		return nil, goerr.Wrap(ErrResponsibleMismatch, "responsible confirmation does not match",
			goerr.V(FieldKey, "responsible_confirmation"), goerr.V(AprIDKey, id))
	}

	template := uc.template.Clone()
	apr.Status = types.StatusFinal
	apr.TemplateVersion = template.Version
	apr.SourceHashes = template.SourceHashes

	updated, err := uc.repo.APR().Update(ctx, token.TenantID, apr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to finalize apr", goerr.V(AprIDKey, id))
	}

	uc.recordEvent(ctx, token, id, model.EventFinalized, map[string]any{
		"template_version": template.Version,
	})

	return updated, nil
}
