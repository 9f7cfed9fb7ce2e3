package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/engenharia-apr/aprd/pkg/cli/config"
	modelconfig "github.com/engenharia-apr/aprd/pkg/domain/model/config"
)

// cmdValidate checks the risk matrix and hazard catalog files without
// starting the server, for CI and pre-deploy checks
func cmdValidate() *cli.Command {
	var matrixCfg config.Matrix
	var catalogCfg config.Catalog

	flags := matrixCfg.Flags()
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate risk matrix and hazard catalog configuration",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ok := color.New(color.FgGreen).SprintFunc()
			fail := color.New(color.FgRed, color.Bold).SprintFunc()

			failed := false

			matrix, matrixHash, err := matrixCfg.Configure()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s risk matrix: %v\n", fail("FAIL"), err)
				failed = true
			} else if matrixCfg.Path() == "" {
				fmt.Printf("%s risk matrix: built-in default\n", ok("OK"))
			} else {
				fmt.Printf("%s risk matrix: %s (%d bands, sha256 %s)\n",
					ok("OK"), matrixCfg.Path(), len(matrix.Bands), matrixHash[:12])
			}

			hazards, catalogHash, err := catalogCfg.Configure()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s hazard catalog: %v\n", fail("FAIL"), err)
				failed = true
			} else if catalogCfg.Path() == "" {
				fmt.Printf("%s hazard catalog: not configured\n", ok("OK"))
			} else {
				fmt.Printf("%s hazard catalog: %s (%d entries, sha256 %s)\n",
					ok("OK"), catalogCfg.Path(), len(hazards), catalogHash[:12])
			}

			// Catalog defaults must score inside the configured matrix
			if matrix != nil {
				for _, hazard := range hazards {
					if _, level := matrix.Compute(hazard.DefaultProbability, hazard.DefaultSeverity); level == modelconfig.LevelInvalid {
						fmt.Fprintf(os.Stderr, "%s hazard %q: defaults (%d,%d) out of matrix bounds\n",
							fail("FAIL"), hazard.Name, hazard.DefaultProbability, hazard.DefaultSeverity)
						failed = true
					}
				}
			}

			if failed {
				return cli.Exit("configuration validation failed", 1)
			}
			return nil
		},
	}
}
