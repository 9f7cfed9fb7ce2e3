package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

func testLookup() model.HazardLookup {
	return model.BuildHazardLookup([]*model.Hazard{
		{ID: 1, Name: "Queda em diferença de nível abaixo de 1,80 m", DefaultProbability: 2, DefaultSeverity: 3},
		{ID: 2, Name: "Queda em diferença de nível acima de 1,80 m", DefaultProbability: 3, DefaultSeverity: 5},
		{ID: 3, Name: "Choque elétrico", DefaultProbability: 2, DefaultSeverity: 4},
	})
}

func TestBuildHazardLookup(t *testing.T) {
	lookup := testLookup()

	t.Run("keyed by normalized name", func(t *testing.T) {
		hazard, ok := lookup[model.NormalizedKey("choque ELETRICO")]
		gt.Bool(t, ok).True()
		gt.Number(t, hazard.ID).Equal(int64(3))
	})
}

func TestNormalizeHazardNames(t *testing.T) {
	lookup := testLookup()

	t.Run("catalog spelling wins and duplicates drop", func(t *testing.T) {
		got := model.NormalizeHazardNames([]string{
			"choque eletrico",
			"Choque Elétrico",
			"perigo desconhecido",
			"",
		}, lookup)
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0]).Equal("Choque elétrico")
		gt.Value(t, got[1]).Equal("perigo desconhecido")
	})
}

func TestResolveHazard(t *testing.T) {
	lookup := testLookup()

	t.Run("no known candidate yields no link", func(t *testing.T) {
		_, ok := model.ResolveHazard("qualquer risco", []string{"perigo desconhecido"}, lookup)
		gt.Bool(t, ok).False()
	})

	t.Run("single known candidate wins", func(t *testing.T) {
		id, ok := model.ResolveHazard("risco de choque durante manutenção",
			[]string{"Choque elétrico"}, lookup)
		gt.Bool(t, ok).True()
		gt.Number(t, id).Equal(int64(3))
	})

	t.Run("multiple candidates disambiguate by description containment", func(t *testing.T) {
		id, ok := model.ResolveHazard(
			"Trabalhador exposto a queda em diferença de nível acima de 1,80 m sem linha de vida",
			[]string{
				"Queda em diferença de nível abaixo de 1,80 m",
				"Queda em diferença de nível acima de 1,80 m",
			}, lookup)
		gt.Bool(t, ok).True()
		gt.Number(t, id).Equal(int64(2))
	})

	t.Run("ambiguity yields no link rather than a guess", func(t *testing.T) {
		_, ok := model.ResolveHazard(
			"Risco de queda durante a montagem",
			[]string{
				"Queda em diferença de nível abaixo de 1,80 m",
				"Queda em diferença de nível acima de 1,80 m",
			}, lookup)
		gt.Bool(t, ok).False()
	})
}
