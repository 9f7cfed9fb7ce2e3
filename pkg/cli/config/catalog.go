package config

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// Catalog holds CLI flags for the hazard catalog source file
type Catalog struct {
	path string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "hazard-catalog",
			Usage:       "Hazard catalog TOML file, seeded into the repository at startup",
			Category:    "Risk model",
			Sources:     cli.EnvVars("APRD_HAZARD_CATALOG"),
			Destination: &c.path,
		},
	}
}

// Path returns the configured catalog file path
func (c *Catalog) Path() string {
	return c.path
}

type catalogEntry struct {
	ID                 int64    `toml:"id"`
	Name               string   `toml:"name"`
	HazardType         string   `toml:"hazard_type"`
	DefaultProbability int      `toml:"default_probability"`
	DefaultSeverity    int      `toml:"default_severity"`
	Consequences       []string `toml:"consequences"`
	Safeguards         []string `toml:"safeguards"`
}

type catalogFile struct {
	Hazards []catalogEntry `toml:"hazard"`
}

// Configure loads the hazard catalog file. The second return value is
// the SHA-256 of the source file for the provenance stamp. An empty
// path yields an empty catalog.
func (c *Catalog) Configure() ([]*model.Hazard, string, error) {
	if c.path == "" {
		return nil, "", nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", goerr.Wrap(ErrConfigNotFound, "hazard catalog file not found",
				goerr.V(ConfigPathKey, c.path))
		}
		return nil, "", goerr.Wrap(err, "failed to read hazard catalog", goerr.V(ConfigPathKey, c.path))
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, "", goerr.Wrap(ErrInvalidConfig, "failed to parse hazard catalog",
			goerr.V(ConfigPathKey, c.path), goerr.V("parse_error", err.Error()))
	}

	hazards := make([]*model.Hazard, 0, len(file.Hazards))
	for _, entry := range file.Hazards {
		name := model.NormalizeText(entry.Name, false)
		if name == "" {
			return nil, "", goerr.Wrap(ErrInvalidConfig, "hazard catalog entry has no name",
				goerr.V(ConfigPathKey, c.path))
		}
		hazards = append(hazards, &model.Hazard{
			ID:                 entry.ID,
			Name:               name,
			HazardType:         entry.HazardType,
			DefaultProbability: entry.DefaultProbability,
			DefaultSeverity:    entry.DefaultSeverity,
			Consequences:       entry.Consequences,
			Safeguards:         entry.Safeguards,
		})
	}

	sum := sha256.Sum256(data)
	return hazards, hex.EncodeToString(sum[:]), nil
}
