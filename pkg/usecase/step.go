package usecase

import (
	"context"
	"errors"

	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/model/auth"
	"github.com/m-mizutani/goerr/v2"
)

// StepInput carries the writable fields of a step. List fields are free
// text, semicolon separated.
type StepInput struct {
	Order       int
	Description string
	Hazards     string
	Risks       string
	Controls    string
	PPE         string
	Regulations string
}

func (in *StepInput) normalize(lookup model.HazardLookup) {
	in.Description = model.NormalizeText(in.Description, true)
	in.Hazards = model.JoinList(model.NormalizeHazardNames(model.SplitList(in.Hazards), lookup))
	in.Risks = model.JoinList(model.SplitList(in.Risks))
	in.Controls = model.JoinList(model.SplitList(in.Controls))
	in.PPE = model.JoinList(model.SplitList(in.PPE))
	in.Regulations = model.JoinList(model.SplitList(in.Regulations))
}

func (uc *UseCases) editableAPR(ctx context.Context, tenantID string, aprID int64) (*model.APR, error) {
	apr, err := uc.getAPR(ctx, tenantID, aprID)
	if err != nil {
		return nil, err
	}
	if !apr.Status.Editable() {
		return nil, goerr.Wrap(ErrNotEditable, "apr cannot be modified",
			goerr.V(AprIDKey, aprID), goerr.V(StatusKey, apr.Status.String()))
	}
	return apr, nil
}

func (uc *UseCases) hazardLookup(ctx context.Context) (model.HazardLookup, error) {
	hazards, err := uc.repo.Hazard().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load hazard catalog")
	}
	return model.BuildHazardLookup(hazards), nil
}

// AddStep appends a step to an editable APR and rebuilds its risk items
func (uc *UseCases) AddStep(ctx context.Context, aprID int64, input StepInput) (*model.Step, error) {
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

	input.normalize(lookup)
	if input.Order <= 0 {
		return nil, goerr.Wrap(ErrValidation, "order must be positive", goerr.V(FieldKey, "order"))
	}
	if input.Description == "" {
		return nil, goerr.Wrap(ErrValidation, "description is required", goerr.V(FieldKey, "description"))
	}

	step := &model.Step{
		AprID:       aprID,
		Order:       input.Order,
		Description: input.Description,
		Hazards:     input.Hazards,
		Risks:       input.Risks,
		Controls:    input.Controls,
		PPE:         input.PPE,
		Regulations: input.Regulations,
	}

	created, err := uc.repo.Step().Create(ctx, token.TenantID, step)
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicateOrder) {
			return nil, goerr.Wrap(ErrValidation, "step order already in use",
				goerr.V(FieldKey, "order"), goerr.V(AprIDKey, aprID))
		}
		return nil, goerr.Wrap(err, "failed to create step", goerr.V(AprIDKey, aprID))
	}

	if _, err := uc.rebuildRiskItems(ctx, token.TenantID, aprID, lookup); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, token, aprID, model.EventStepAdded, map[string]any{
		"step_id": created.ID,
		"order":   created.Order,
	})

	return created, nil
}

// BulkAddSteps stores a batch of steps in one request, appending to or
// replacing the existing set. The whole batch is validated before
// anything is written; a conflicting order anywhere leaves the document
// untouched.
func (uc *UseCases) BulkAddSteps(ctx context.Context, aprID int64, replace bool, inputs []StepInput) ([]*model.Step, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.editableAPR(ctx, token.TenantID, aprID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, goerr.Wrap(ErrValidation, "at least one step is required", goerr.V(FieldKey, "steps"))
	}

	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return nil, err
	}

	taken := map[int]struct{}{}
	if !replace {
		existing, err := uc.repo.Step().ListByAPR(ctx, token.TenantID, aprID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list steps", goerr.V(AprIDKey, aprID))
		}
		for _, step := range existing {
			taken[step.Order] = struct{}{}
		}
	}

	for i := range inputs {
		inputs[i].normalize(lookup)
		if inputs[i].Order <= 0 {
			return nil, goerr.Wrap(ErrValidation, "order must be positive", goerr.V(FieldKey, "order"))
		}
		if inputs[i].Description == "" {
			return nil, goerr.Wrap(ErrValidation, "description is required", goerr.V(FieldKey, "description"))
		}
		if _, dup := taken[inputs[i].Order]; dup {
			return nil, goerr.Wrap(ErrValidation, "step order already in use",
				goerr.V(FieldKey, "order"), goerr.V(AprIDKey, aprID))
		}
		taken[inputs[i].Order] = struct{}{}
	}

	if replace {
		if err := uc.repo.Step().DeleteByAPR(ctx, token.TenantID, aprID); err != nil {
			return nil, goerr.Wrap(err, "failed to clear steps", goerr.V(AprIDKey, aprID))
		}
	}

	created := make([]*model.Step, 0, len(inputs))
	for _, input := range inputs {
		step := &model.Step{
			AprID:       aprID,
			Order:       input.Order,
			Description: input.Description,
			Hazards:     input.Hazards,
			Risks:       input.Risks,
			Controls:    input.Controls,
			PPE:         input.PPE,
			Regulations: input.Regulations,
		}
		stored, err := uc.repo.Step().Create(ctx, token.TenantID, step)
		if err != nil {
			if errors.Is(err, interfaces.ErrDuplicateOrder) {
				return nil, goerr.Wrap(ErrValidation, "step order already in use",
					goerr.V(FieldKey, "order"), goerr.V(AprIDKey, aprID))
			}
			return nil, goerr.Wrap(err, "failed to create step", goerr.V(AprIDKey, aprID))
		}
		created = append(created, stored)
	}

	if _, err := uc.rebuildRiskItems(ctx, token.TenantID, aprID, lookup); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, token, aprID, model.EventStepsBulk, map[string]any{
		"count":   len(created),
		"replace": replace,
	})

	return created, nil
}

// GetStep retrieves one step within the actor's tenant
func (uc *UseCases) GetStep(ctx context.Context, id int64) (*model.Step, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	step, err := uc.repo.Step().Get(ctx, token.TenantID, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V(StepIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get step", goerr.V(StepIDKey, id))
	}
	return step, nil
}

// ListSteps retrieves the APR's steps in sequence order
func (uc *UseCases) ListSteps(ctx context.Context, aprID int64) ([]*model.Step, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.getAPR(ctx, token.TenantID, aprID); err != nil {
		return nil, err
	}

	steps, err := uc.repo.Step().ListByAPR(ctx, token.TenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list steps", goerr.V(AprIDKey, aprID))
	}
	return steps, nil
}

// UpdateStep replaces a step's writable fields and rebuilds the APR's
// risk items
func (uc *UseCases) UpdateStep(ctx context.Context, id int64, input StepInput) (*model.Step, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := uc.GetStep(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.editableAPR(ctx, token.TenantID, existing.AprID); err != nil {
		return nil, err
	}

	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return nil, err
	}

	input.normalize(lookup)
	if input.Order <= 0 {
		return nil, goerr.Wrap(ErrValidation, "order must be positive", goerr.V(FieldKey, "order"))
	}
	if input.Description == "" {
		return nil, goerr.Wrap(ErrValidation, "description is required", goerr.V(FieldKey, "description"))
	}

	existing.Order = input.Order
	existing.Description = input.Description
	existing.Hazards = input.Hazards
	existing.Risks = input.Risks
	existing.Controls = input.Controls
	existing.PPE = input.PPE
	existing.Regulations = input.Regulations

	updated, err := uc.repo.Step().Update(ctx, token.TenantID, existing)
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicateOrder) {
			return nil, goerr.Wrap(ErrValidation, "step order already in use",
				goerr.V(FieldKey, "order"), goerr.V(AprIDKey, existing.AprID))
		}
		return nil, goerr.Wrap(err, "failed to update step", goerr.V(StepIDKey, id))
	}

	if _, err := uc.rebuildRiskItems(ctx, token.TenantID, existing.AprID, lookup); err != nil {
		return nil, err
	}

	uc.recordEvent(ctx, token, existing.AprID, model.EventStepUpdated, map[string]any{
		"step_id": id,
	})

	return updated, nil
}

// DeleteStep removes a step and rebuilds the APR's risk items, so no
// orphan items survive
func (uc *UseCases) DeleteStep(ctx context.Context, id int64) error {
	token, err := requireWriter(ctx)
	if err != nil {
		return err
	}

	existing, err := uc.GetStep(ctx, id)
	if err != nil {
		return err
	}
	if _, err := uc.editableAPR(ctx, token.TenantID, existing.AprID); err != nil {
		return err
	}

	if err := uc.repo.Step().Delete(ctx, token.TenantID, id); err != nil {
		if isRepoNotFound(err) {
			return goerr.Wrap(ErrNotFound, "step not found", goerr.V(StepIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete step", goerr.V(StepIDKey, id))
	}

	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return err
	}
	if _, err := uc.rebuildRiskItems(ctx, token.TenantID, existing.AprID, lookup); err != nil {
		return err
	}

	uc.recordEvent(ctx, token, existing.AprID, model.EventStepRemoved, map[string]any{
		"step_id": id,
	})

	return nil
}
