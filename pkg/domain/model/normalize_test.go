package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

func TestNormalizeText(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		gt.Value(t, model.NormalizeText("  trabalho   em\taltura  ", false)).
			Equal("trabalho em altura")
	})

	t.Run("folds empty sentinels", func(t *testing.T) {
		for _, v := range []string{"nan", "NaN", "none", "NULL", "  null  ", ""} {
			gt.Value(t, model.NormalizeText(v, false)).Equal("")
		}
	})

	t.Run("keeps single newlines when requested", func(t *testing.T) {
		got := model.NormalizeText("linha um\n\n\n\nlinha dois", true)
		gt.Value(t, got).Equal("linha um\n\nlinha dois")
	})

	t.Run("strips newlines when not requested", func(t *testing.T) {
		gt.Value(t, model.NormalizeText("linha um\nlinha dois", false)).
			Equal("linha um linha dois")
	})
}

func TestNormalizedKey(t *testing.T) {
	t.Run("strips diacritics and case", func(t *testing.T) {
		gt.Value(t, model.NormalizedKey("Eletricidade em Instalações")).
			Equal("eletricidade em instalacoes")
	})

	t.Run("accented and plain spellings collide", func(t *testing.T) {
		gt.Value(t, model.NormalizedKey("QUEDA DE NÍVEL")).
			Equal(model.NormalizedKey("queda de nivel"))
	})
}

func TestSplitList(t *testing.T) {
	t.Run("splits on semicolon only", func(t *testing.T) {
		got := model.SplitList("Queda em diferença de nível acima de 1,80 m; Choque elétrico")
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0]).Equal("Queda em diferença de nível acima de 1,80 m")
		gt.Value(t, got[1]).Equal("Choque elétrico")
	})

	t.Run("drops empty entries", func(t *testing.T) {
		got := model.SplitList(" ; a ;; b ; ")
		gt.Array(t, got).Length(2)
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		gt.Array(t, model.SplitList("  ")).Length(0)
	})
}

func TestJoinList(t *testing.T) {
	gt.Value(t, model.JoinList([]string{"a", "b"})).Equal("a; b")
	gt.Value(t, model.JoinList(nil)).Equal("")
}
