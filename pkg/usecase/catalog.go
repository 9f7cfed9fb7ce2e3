package usecase

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/model/auth"
	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
	"github.com/m-mizutani/goerr/v2"
)

// ListHazards returns the full hazard catalog
func (uc *UseCases) ListHazards(ctx context.Context) ([]*model.Hazard, error) {
	if _, err := auth.TokenFromContext(ctx); err != nil {
		return nil, err
	}

	hazards, err := uc.repo.Hazard().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list hazards")
	}
	return hazards, nil
}

// ImportHazards loads catalog entries, validating names and default
// scores before anything is written. Admin only: the catalog is shared
// reference data.
func (uc *UseCases) ImportHazards(ctx context.Context, hazards []*model.Hazard) (int, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if !token.Role.IsAdmin() {
		return 0, goerr.Wrap(ErrForbidden, "only admins may manage the catalog",
			goerr.V("role", token.Role.String()))
	}

	for _, hazard := range hazards {
		hazard.Name = model.NormalizeText(hazard.Name, false)
		if hazard.Name == "" {
			return 0, goerr.Wrap(ErrValidation, "hazard name is required", goerr.V(FieldKey, "name"))
		}
		if _, level := uc.matrix.Compute(hazard.DefaultProbability, hazard.DefaultSeverity); level == config.LevelInvalid {
			return 0, goerr.Wrap(ErrValidation, "hazard defaults out of matrix bounds",
				goerr.V(FieldKey, "default_probability"), goerr.V("name", hazard.Name))
		}
	}

	count := 0
	for _, hazard := range hazards {
		if _, err := uc.repo.Hazard().Put(ctx, hazard); err != nil {
			return count, goerr.Wrap(err, "failed to store hazard", goerr.V("name", hazard.Name))
		}
		count++
	}

	return count, nil
}
