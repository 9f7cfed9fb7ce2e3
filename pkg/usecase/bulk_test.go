package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

func TestBulkAddSteps(t *testing.T) {
	t.Run("append creates all steps and rebuilds once", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		created, err := uc.BulkAddSteps(ctx, apr.ID, false, []usecase.StepInput{
			{
				Order:       1,
				Description: "Isolar a área de trabalho",
				Hazards:     "choque eletrico",
				Risks:       "Choque elétrico",
				Controls:    "Bloqueio e etiquetagem",
			},
			{
				Order:       2,
				Description: "Instalar o quadro",
				Hazards:     "Choque elétrico",
				Risks:       "Choque ao energizar",
				Controls:    "Luvas isolantes",
			},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, created).Length(2)
		gt.Value(t, created[0].Hazards).Equal("Choque elétrico")

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2)
		gt.Number(t, items[0].Score).Equal(8)

		events, err := uc.ListEvents(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
		gt.Value(t, events[1].Action).Equal(model.EventStepsBulk)
		gt.Value(t, events[1].Payload["count"]).Equal(2)
		gt.Value(t, events[1].Payload["replace"]).Equal(false)
	})

	t.Run("replace discards the previous steps", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa antiga",
			Hazards:     "Choque elétrico",
			Risks:       "Choque",
			Controls:    "Bloqueio",
		})
		gt.NoError(t, err).Required()

		created, err := uc.BulkAddSteps(ctx, apr.ID, true, []usecase.StepInput{
			{
				Order:       1,
				Description: "Etapa nova",
				Hazards:     "Choque elétrico",
				Risks:       "Choque",
				Controls:    "Bloqueio",
			},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, created).Length(1)

		steps, err := uc.ListSteps(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, steps).Length(1)
		gt.Value(t, steps[0].Description).Equal("Etapa nova")

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
	})

	t.Run("order conflict with an existing step leaves the document untouched", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa existente",
			Hazards:     "Choque elétrico",
			Risks:       "Choque",
			Controls:    "Bloqueio",
		})
		gt.NoError(t, err).Required()

		_, err = uc.BulkAddSteps(ctx, apr.ID, false, []usecase.StepInput{
			{Order: 2, Description: "Etapa válida", Controls: "Bloqueio"},
			{Order: 1, Description: "Etapa conflitante", Controls: "Bloqueio"},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()

		steps, err := uc.ListSteps(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, steps).Length(1)
	})

	t.Run("duplicate orders within the batch are rejected", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.BulkAddSteps(ctx, apr.ID, false, []usecase.StepInput{
			{Order: 1, Description: "Primeira", Controls: "Bloqueio"},
			{Order: 1, Description: "Repetida", Controls: "Bloqueio"},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.BulkAddSteps(ctx, apr.ID, false, nil)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("submitted apr refuses bulk changes", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.ChangeStatus(ctx, apr.ID, types.StatusSubmitted)
		gt.NoError(t, err).Required()

		_, err = uc.BulkAddSteps(ctx, apr.ID, false, []usecase.StepInput{
			{Order: 1, Description: "Etapa", Controls: "Bloqueio"},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrNotEditable)).True()
	})
}
