package config

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	modelconfig "github.com/engenharia-apr/aprd/pkg/domain/model/config"
)

// Matrix holds CLI flags for the risk matrix configuration
type Matrix struct {
	path string
}

// Flags returns CLI flags for matrix configuration
func (m *Matrix) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "risk-matrix",
			Usage:       "Risk matrix TOML file (built-in 5x5 matrix when omitted)",
			Category:    "Risk model",
			Sources:     cli.EnvVars("APRD_RISK_MATRIX"),
			Destination: &m.path,
		},
	}
}

// Path returns the configured matrix file path
func (m *Matrix) Path() string {
	return m.path
}

// Configure loads and validates the risk matrix. The second return
// value is the SHA-256 of the source file, empty for the built-in
// matrix; it feeds the provenance stamp.
func (m *Matrix) Configure() (*modelconfig.RiskMatrix, string, error) {
	if m.path == "" {
		return modelconfig.DefaultRiskMatrix(), "", nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", goerr.Wrap(ErrConfigNotFound, "risk matrix file not found",
				goerr.V(ConfigPathKey, m.path))
		}
		return nil, "", goerr.Wrap(err, "failed to read risk matrix", goerr.V(ConfigPathKey, m.path))
	}

	var matrix modelconfig.RiskMatrix
	if err := toml.Unmarshal(data, &matrix); err != nil {
		return nil, "", goerr.Wrap(ErrInvalidConfig, "failed to parse risk matrix",
			goerr.V(ConfigPathKey, m.path), goerr.V("parse_error", err.Error()))
	}
	if err := matrix.Validate(); err != nil {
		return nil, "", goerr.Wrap(err, "invalid risk matrix", goerr.V(ConfigPathKey, m.path))
	}

	sum := sha256.Sum256(data)
	return &matrix, hex.EncodeToString(sum[:]), nil
}
