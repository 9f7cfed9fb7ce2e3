package usecase

import (
	"context"
	"errors"

	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// DraftSteps asks the drafting collaborator for candidate steps and
// stores the ones that survive validation. Drafted output carries no
// elevated trust: every candidate goes through the same normalization
// and the same rebuild trigger as a human-entered step.
func (uc *UseCases) DraftSteps(ctx context.Context, aprID int64, maxSteps int) ([]*model.Step, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	if uc.drafter == nil {
		return nil, goerr.New("draft service is not configured")
	}

	apr, err := uc.editableAPR(ctx, token.TenantID, aprID)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.drafter.Draft(ctx, apr, maxSteps)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to draft steps", goerr.V(AprIDKey, aprID))
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	existing, err := uc.repo.Step().ListByAPR(ctx, token.TenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list steps", goerr.V(AprIDKey, aprID))
	}
	nextOrder := 0
	for _, step := range existing {
		if step.Order > nextOrder {
			nextOrder = step.Order
		}
	}

	lookup, err := uc.hazardLookup(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]*model.Step, 0, len(candidates))
	for _, candidate := range candidates {
		input := StepInput{
			Order:       nextOrder + 1,
			Description: candidate.Description,
			Hazards:     candidate.Hazards,
			Risks:       candidate.Risks,
			Controls:    candidate.Controls,
			PPE:         candidate.PPE,
			Regulations: candidate.Regulations,
		}
		input.normalize(lookup)
		if input.Description == "" {
			continue
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
		stored, err := uc.repo.Step().Create(ctx, token.TenantID, step)
		if err != nil {
			if errors.Is(err, interfaces.ErrDuplicateOrder) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to store drafted step", goerr.V(AprIDKey, aprID))
		}
		created = append(created, stored)
		nextOrder++
	}

	if len(created) > 0 {
		if _, err := uc.rebuildRiskItems(ctx, token.TenantID, aprID, lookup); err != nil {
			return nil, err
		}
		uc.recordEvent(ctx, token, aprID, model.EventStepsDrafted, map[string]any{
			"count": len(created),
		})
	}

	return created, nil
}
