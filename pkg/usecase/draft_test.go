package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/service/draft"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

// draftTestSession is a mock gollem Session returning a fixed payload
type draftTestSession struct {
	payload string
}

func (s *draftTestSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *draftTestSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *draftTestSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{s.payload}}, nil
}

func (s *draftTestSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *draftTestSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *draftTestSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *draftTestSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// draftTestClient is a mock gollem LLMClient for drafting tests
type draftTestClient struct {
	payload string
}

func (c *draftTestClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &draftTestSession{payload: c.payload}, nil
}

func (c *draftTestClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestDraftSteps(t *testing.T) {
	payload := `{"steps":[{` +
		`"description":"Isolar e sinalizar a área de trabalho",` +
		`"hazards":["Choque elétrico"],` +
		`"risks":["Contato com partes energizadas"],` +
		`"controls":["Bloqueio e etiquetagem"],` +
		`"ppe":["Luvas isolantes"],` +
		`"regulations":["NR-10"]}]}`

	newDraftingUseCases := func(t *testing.T) (*usecase.UseCases, context.Context) {
		t.Helper()
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		drafter, err := draft.New(&draftTestClient{payload: payload})
		gt.NoError(t, err).Required()
		uc = usecase.New(repo, usecase.WithDrafter(drafter))
		return uc, contextWithRole(types.RoleTechnician)
	}

	t.Run("drafted candidates become validated steps", func(t *testing.T) {
		uc, ctx := newDraftingUseCases(t)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		steps, err := uc.DraftSteps(ctx, apr.ID, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, steps).Length(1)
		gt.Value(t, steps[0].Hazards).Equal("Choque elétrico")
		gt.Number(t, steps[0].Order).Equal(1)

		// drafting triggers the same rebuild as a manual step
		items, err := uc.ListRiskItems(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
		gt.Number(t, items[0].Score).Equal(8)

		events, err := uc.ListEvents(ctx, apr.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
		gt.Value(t, events[1].Action).Equal(model.EventStepsDrafted)
	})

	t.Run("drafted steps append after existing ones", func(t *testing.T) {
		uc, ctx := newDraftingUseCases(t)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.AddStep(ctx, apr.ID, usecase.StepInput{
			Order:       3,
			Description: "Etapa manual",
			Hazards:     "Choque elétrico",
			Risks:       "Choque",
			Controls:    "Bloqueio",
		})
		gt.NoError(t, err).Required()

		steps, err := uc.DraftSteps(ctx, apr.ID, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, steps).Length(1)
		gt.Number(t, steps[0].Order).Equal(4)
	})

	t.Run("drafting a non editable document is refused", func(t *testing.T) {
		uc, ctx := newDraftingUseCases(t)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()
		_, err = uc.ChangeStatus(ctx, apr.ID, types.StatusSubmitted)
		gt.NoError(t, err).Required()

		_, err = uc.DraftSteps(ctx, apr.ID, 5)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNotEditable)).True()
	})

	t.Run("unconfigured drafter is an error", func(t *testing.T) {
		uc, repo := newUseCases(t)
		seedCatalog(t, repo)
		ctx := contextWithRole(types.RoleTechnician)
		apr, err := uc.CreateAPR(ctx, fullInput())
		gt.NoError(t, err).Required()

		_, err = uc.DraftSteps(ctx, apr.ID, 5)
		gt.Error(t, err)
	})
}

func TestHazardCatalog(t *testing.T) {
	t.Run("import validates before writing", func(t *testing.T) {
		uc, _ := newUseCases(t)
		ctx := contextWithRole(types.RoleAdmin)

		_, err := uc.ImportHazards(ctx, []*model.Hazard{
			{Name: "Ruído contínuo", DefaultProbability: 4, DefaultSeverity: 2},
			{Name: "Inválido", DefaultProbability: 0, DefaultSeverity: 3},
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()

		hazards, err := uc.ListHazards(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, hazards).Length(0) // nothing written on a failed batch
	})

	t.Run("import is admin only", func(t *testing.T) {
		uc, _ := newUseCases(t)
		ctx := contextWithRole(types.RoleTechnician)

		_, err := uc.ImportHazards(ctx, []*model.Hazard{
			{Name: "Ruído contínuo", DefaultProbability: 4, DefaultSeverity: 2},
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrForbidden)).True()
	})

	t.Run("valid batch is stored and listable by any role", func(t *testing.T) {
		uc, _ := newUseCases(t)
		admin := contextWithRole(types.RoleAdmin)

		count, err := uc.ImportHazards(admin, []*model.Hazard{
			{Name: "Ruído contínuo", DefaultProbability: 4, DefaultSeverity: 2},
			{Name: "Poeira em suspensão", DefaultProbability: 3, DefaultSeverity: 2},
		})
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(2)

		viewer := contextWithRole(types.RoleViewer)
		hazards, err := uc.ListHazards(viewer)
		gt.NoError(t, err).Required()
		gt.Array(t, hazards).Length(2)
	})
}
