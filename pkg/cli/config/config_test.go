package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engenharia-apr/aprd/pkg/cli/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestMatrixConfigure(t *testing.T) {
	t.Run("empty path yields the built-in matrix without a hash", func(t *testing.T) {
		matrix, hash, err := config.NewMatrixForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, hash).Equal("")

		score, level := matrix.Compute(5, 5)
		gt.Number(t, score).Equal(25)
		gt.Value(t, level).Equal("alto")
	})

	t.Run("custom matrix file is parsed validated and hashed", func(t *testing.T) {
		path := writeFile(t, "matrix.toml", `
[probability]
min = 1
max = 3

[severity]
min = 1
max = 3

[[band]]
min = 1
max = 4
level = "baixo"

[[band]]
min = 5
max = 9
level = "alto"
`)
		matrix, hash, err := config.NewMatrixForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, len(hash)).Equal(64)

		score, level := matrix.Compute(3, 3)
		gt.Number(t, score).Equal(9)
		gt.Value(t, level).Equal("alto")

		_, level = matrix.Compute(4, 1)
		gt.Value(t, level).Equal("invalid")
	})

	t.Run("band gap is rejected", func(t *testing.T) {
		path := writeFile(t, "matrix.toml", `
[probability]
min = 1
max = 3

[severity]
min = 1
max = 3

[[band]]
min = 1
max = 3
level = "baixo"

[[band]]
min = 5
max = 9
level = "alto"
`)
		_, _, err := config.NewMatrixForTest(path).Configure()
		gt.Error(t, err)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, _, err := config.NewMatrixForTest("/nonexistent/matrix.toml").Configure()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})
}

func TestCatalogConfigure(t *testing.T) {
	t.Run("empty path yields an empty catalog", func(t *testing.T) {
		hazards, hash, err := config.NewCatalogForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Array(t, hazards).Length(0)
		gt.Value(t, hash).Equal("")
	})

	t.Run("entries are parsed with normalized names", func(t *testing.T) {
		path := writeFile(t, "catalog.toml", `
[[hazard]]
id = 1
name = "  Choque   elétrico "
hazard_type = "físico"
default_probability = 2
default_severity = 4
consequences = ["Queimaduras", "Parada cardíaca"]
safeguards = ["Bloqueio e etiquetagem"]

[[hazard]]
id = 2
name = "Queda em diferença de nível acima de 1,80 m"
default_probability = 3
default_severity = 5
`)
		hazards, hash, err := config.NewCatalogForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, len(hash)).Equal(64)
		gt.Array(t, hazards).Length(2)
		gt.Value(t, hazards[0].Name).Equal("Choque elétrico")
		gt.Array(t, hazards[0].Consequences).Length(2)
		gt.Number(t, hazards[1].DefaultSeverity).Equal(5)
	})

	t.Run("nameless entry is rejected", func(t *testing.T) {
		path := writeFile(t, "catalog.toml", `
[[hazard]]
name = "   "
default_probability = 2
default_severity = 2
`)
		_, _, err := config.NewCatalogForTest(path).Configure()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}
