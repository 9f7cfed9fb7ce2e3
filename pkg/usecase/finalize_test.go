package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/service/export"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

const responsibleName = "Engenheira Responsável"

func TestFinalizeAPR(t *testing.T) {
	addValidStep := func(t *testing.T, uc *usecase.UseCases, ctx context.Context, aprID int64) {
		t.Helper()
		_, err := uc.AddStep(ctx, aprID, usecase.StepInput{
			Order:       1,
			Description: "Trabalho em altura",
			Hazards:     "Queda em diferença de nível acima de 1,80 m",
			Risks:       "Queda do trabalhador",
			Controls:    "Cinto de segurança; Linha de vida",
		})
		gt.NoError(t, err).Required()
	}

	t.Run("missing required field fails first", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)

		input := fullInput()
		input.Sector = ""
		apr, err := uc.CreateAPR(ctx, input)
		gt.NoError(t, err).Required()
		addValidStep(t, uc, ctx, apr.ID)

		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("a document without steps cannot finalize", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("a step without controls blocks finalization", func(t *testing.T) {
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
		})
		gt.NoError(t, err).Required()

		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	})

	t.Run("wrong responsible confirmation is rejected", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		addValidStep(t, uc, ctx, apr.ID)

		_, err = uc.FinalizeAPR(ctx, apr.ID, "Outro Nome")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrResponsibleMismatch)).True()

		current, err := uc.GetAPR(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.Status).Equal(types.StatusDraft)
	})

	t.Run("confirmation matches after normalization", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		addValidStep(t, uc, ctx, apr.ID)

		finalized, err := uc.FinalizeAPR(ctx, apr.ID, "  engenheira   RESPONSAVEL ")
		gt.NoError(t, err).Required()
		gt.Value(t, finalized.Status).Equal(types.StatusFinal)
	})

	t.Run("finalized document stamps provenance and locks editing", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		template := &config.Template{
			Version:      "v2",
			SourceHashes: map[string]string{"risk_matrix": "abc123"},
		}
		uc = usecase.New(repo, usecase.WithTemplate(template))
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		addValidStep(t, uc, ctx, apr.ID)

		finalized, err := uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.NoError(t, err).Required()
		gt.Value(t, finalized.Status).Equal(types.StatusFinal)
		gt.Value(t, finalized.TemplateVersion).Equal("v2")
		gt.Value(t, finalized.SourceHashes["risk_matrix"]).Equal("abc123")

		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotEditable)).True()
	})

	t.Run("invalid item blocks until overridden", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		// Two known hazards, a risk phrase naming neither: the item
		// stays unresolved and scores invalid.
		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Etapa com duas fontes de perigo",
			Hazards:     "Queda em diferença de nível abaixo de 1,80 m; Queda em diferença de nível acima de 1,80 m",
			Risks:       "Lesões graves e fraturas",
			Controls:    "Sinalizar e delimitar a área",
		})
		gt.NoError(t, err).Required()

		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrRiskScoreInvalid)).True()

		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Value(t, items[0].Level).Equal("invalid")

		updated, err := uc.OverrideRiskItem(ctx, items[0].ID, 3, 3)
		gt.NoError(t, err).Required()
		gt.Number(t, updated.Score).Equal(9)
		gt.Value(t, updated.Level).Equal("medio")

		finalized, err := uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.NoError(t, err).Required()
		gt.Value(t, finalized.Status).Equal(types.StatusFinal)
	})
}

func TestExportAPR(t *testing.T) {
	newExportUseCases := func(t *testing.T) (*usecase.UseCases, context.Context) {
		t.Helper()
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		exporter, err := export.New(context.Background(), "")
		gt.NoError(t, err).Required()
		uc = usecase.New(repo, usecase.WithExporter(exporter))
		return uc, contextWithRole(types.RoleTechnician)
	}

	finalizeDocument := func(t *testing.T, uc *usecase.UseCases, ctx context.Context) int64 {
		t.Helper()
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       1,
			Description: "Trabalho em altura",
			Hazards:     "Queda em diferença de nível acima de 1,80 m",
			Risks:       "Queda do trabalhador",
			Controls:    "Cinto de segurança",
		})
		gt.NoError(t, err).Required()
		_, err = uc.FinalizeAPR(ctx, apr.ID, responsibleName)
		gt.NoError(t, err).Required()
		return apr.ID
	}

	t.Run("draft document is not exportable", func(t *testing.T) {
		uc, ctx := newExportUseCases(t)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.ExportAPR(ctx, apr.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotFinal)).True()
	})

	t.Run("finalized document exports a digest-stamped snapshot", func(t *testing.T) {
		uc, ctx := newExportUseCases(t)
		aprID := finalizeDocument(t, uc, ctx)

		snapshot, err := uc.ExportAPR(ctx, aprID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.APR.ID).Equal(aprID)
		gt.Array(t, snapshot.Steps).Length(1)
		gt.Array(t, snapshot.RiskItems).Length(1)
		gt.Bool(t, snapshot.ShareToken != "").True()
		gt.Bool(t, snapshot.Digest != "").True()
	})

	t.Run("archived document is no longer exportable", func(t *testing.T) {
		uc, ctx := newExportUseCases(t)
		aprID := finalizeDocument(t, uc, ctx)

		_, err := uc.ArchiveAPR(ctx, aprID)
		gt.NoError(t, err).Required()

		_, err = uc.ExportAPR(ctx, aprID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotFinal)).True()
	})
}
