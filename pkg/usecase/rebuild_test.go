package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

func TestStepMutationRebuild(t *testing.T) {
	t.Run("adding a step derives risk items with catalog defaults", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Instalar quadro de distribuição",
			Hazards:     "choque eletrico",
			Risks:       "Choque elétrico ao energizar o quadro",
			Controls:    "Bloqueio e etiquetagem",
		})
		gt.NoError(t, err).Required()

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Number(t, items[0].Probability).Equal(2)
		gt.Number(t, items[0].Severity).Equal(4)
		gt.Number(t, items[0].Score).Equal(8)
		gt.Value(t, items[0].Level).Equal("medio")
		gt.Value(t, items[0].HazardID).NotEqual(int64(0))
	})

	t.Run("ambiguous hazards leave the item unresolved and invalid", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa com duas fontes de perigo",
			Hazards:     "Queda em diferença de nível abaixo de 1,80 m; Queda em diferença de nível acima de 1,80 m",
			Risks:       "Lesões graves e fraturas",
			Controls:    "Sinalizar e delimitar a área",
		})
		gt.NoError(t, err).Required()

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Number(t, items[0].HazardID).Equal(int64(0))
		gt.Number(t, items[0].Probability).Equal(0)
		gt.Value(t, items[0].Level).Equal("invalid")
	})

	t.Run("deleting a step leaves no orphan items", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		step, err := uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Trabalho em altura",
			Hazards:     "Queda em diferença de nível acima de 1,80 m",
			Risks:       "Queda do trabalhador; Queda de materiais",
			Controls:    "Cinto de segurança",
		})
		gt.NoError(t, err).Required()

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2)

		gt.NoError(t, uc.DeleteStep(ctx, step.ID)).Required()

		items, err = uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(0)
	})

	t.Run("duplicate step order is a validation error", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		input := usecase.StepInput{
			Order:       1,
			Description: "Primeira etapa",
			Hazards:     "Choque elétrico",
			Risks:       "Choque",
			Controls:    "Bloqueio",
		}
		_, err = uc.AddStep(ctx, apr.ID, input)
		gt.NoError(t, err).Required()
		_, err = uc.AddStep(ctx, apr.ID, input)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("hazard names fold to catalog spelling", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		step, err := uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Energização",
			Hazards:     "CHOQUE ELETRICO",
			Risks:       "Contato com partes vivas",
			Controls:    "EPI dielétrico",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, step.Hazards).Equal("Choque elétrico")
	})
}

func TestRebuildRiskItems(t *testing.T) {
	t.Run("rebuild twice yields an identical set", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Trabalho em altura",
			Hazards:     "Queda em diferença de nível acima de 1,80 m",
			Risks:       "Queda do trabalhador",
			Controls:    "Linha de vida",
		})
		gt.NoError(t, err).Required()

		first, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()

		result, err := uc.RebuildRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, result.Created).Equal(1)
		gt.Number(t, result.Invalid).Equal(0)

		second, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, second).Length(len(first))
		for i := range first {
			gt.Value(t, second[i].RiskDescription).Equal(first[i].RiskDescription)
			gt.Number(t, second[i].HazardID).Equal(first[i].HazardID)
			gt.Number(t, second[i].Score).Equal(first[i].Score)
		}
	})

	t.Run("rebuild is refused on a non editable document", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.ChangeStatus(ctx, apr.ID, types.StatusSubmitted)
		gt.NoError(t, err).Required()

		_, err = uc.RebuildRiskItems(ctx, apr.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotEditable)).True()
	})
}

func TestOverrideRiskItem(t *testing.T) {
	addUnresolvedItem := func(t *testing.T, uc *usecase.UseCases, ctx context.Context, aprID int64) *model.RiskItem {
		t.Helper()
		_, err := uc.AddStep(ctx, aprID, usecase.StepInput{
			Order:       1,
			Description: "Etapa com perigo fora do catálogo",
			Hazards:     "Perigo não catalogado",
			Risks:       "Risco sem referência",
			Controls:    "Supervisão direta",
		})
		gt.NoError(t, err).Required()
		items, err := uc.ListRiskItems(ctx, aprID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		return items[0]
	}

	t.Run("override recomputes score and level", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		item := addUnresolvedItem(t, uc, ctx, apr.ID)

		updated, err := uc.OverrideRiskItem(ctx, item.ID, 3, 3)
		gt.NoError(t, err).Required()
		gt.Number(t, updated.Score).Equal(9)
		gt.Value(t, updated.Level).Equal("medio")
	})

	t.Run("out of bounds override is rejected", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		item := addUnresolvedItem(t, uc, ctx, apr.ID)

		_, err = uc.OverrideRiskItem(ctx, item.ID, 0, 3)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrRiskScoreInvalid)).True()

		_, err = uc.OverrideRiskItem(ctx, item.ID, 3, 6)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrRiskScoreInvalid)).True()
	})

	t.Run("override survives a rebuild of the same item", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		item := addUnresolvedItem(t, uc, ctx, apr.ID)

		_, err = uc.OverrideRiskItem(ctx, item.ID, 3, 3)
		gt.NoError(t, err).Required()

		result, err := uc.RebuildRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, result.Invalid).Equal(0)

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Number(t, items[0].Probability).Equal(3)
		gt.Number(t, items[0].Severity).Equal(3)
		gt.Value(t, items[0].Level).Equal("medio")
	})

	t.Run("override is lost when the risk text changes", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		step, err := uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa com perigo fora do catálogo",
			Hazards:     "Perigo não catalogado",
			Risks:       "Risco sem referência",
			Controls:    "Supervisão direta",
		})
		gt.NoError(t, err).Required()
		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		_, err = uc.OverrideRiskItem(ctx, items[0].ID, 3, 3)
		gt.NoError(t, err).Required()

		_, err = uc.UpdateStep(ctx, step.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa com perigo fora do catálogo",
			Hazards:     "Perigo não catalogado",
			Risks:       "Outro risco descrito",
			Controls:    "Supervisão direta",
		})
		gt.NoError(t, err).Required()

		items, err = uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Number(t, items[0].Probability).Equal(0)
		gt.Value(t, items[0].Level).Equal("invalid")
	})
}
