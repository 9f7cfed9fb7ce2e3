package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/engenharia-apr/aprd/pkg/cli/config"
	httpctrl "github.com/engenharia-apr/aprd/pkg/controller/http"
	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	modelconfig "github.com/engenharia-apr/aprd/pkg/domain/model/config"
	"github.com/engenharia-apr/aprd/pkg/service/draft"
	"github.com/engenharia-apr/aprd/pkg/usecase"
	"github.com/engenharia-apr/aprd/pkg/utils/logging"
	"github.com/engenharia-apr/aprd/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var noAuthTenant string
	var templateVersion string
	var repoCfg config.Repository
	var matrixCfg config.Matrix
	var catalogCfg config.Catalog
	var geminiCfg config.Gemini
	var exportCfg config.Export

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("APRD_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run every request as an admin of the given tenant (development only). Example: --no-auth=dev-tenant",
			Category:    "Authentication",
			Sources:     cli.EnvVars("APRD_NO_AUTH"),
			Destination: &noAuthTenant,
		},
		&cli.StringFlag{
			Name:        "template-version",
			Usage:       "Template version stamped on finalized documents",
			Value:       "v1",
			Category:    "Risk model",
			Sources:     cli.EnvVars("APRD_TEMPLATE_VERSION"),
			Destination: &templateVersion,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, matrixCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, exportCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			matrix, matrixHash, err := matrixCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load risk matrix")
			}

			hazards, catalogHash, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load hazard catalog")
			}
			if err := seedCatalog(ctx, repo, hazards); err != nil {
				return err
			}

			template := &modelconfig.Template{
				Version:      templateVersion,
				SourceHashes: map[string]string{},
			}
			if matrixHash != "" {
				template.SourceHashes["risk_matrix"] = matrixHash
			}
			if catalogHash != "" {
				template.SourceHashes["hazard_catalog"] = catalogHash
			}

			exporter, err := exportCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, exporter)

			ucOpts := []usecase.Option{
				usecase.WithMatrix(matrix),
				usecase.WithTemplate(template),
				usecase.WithExporter(exporter),
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}
			if llmClient != nil {
				drafter, err := draft.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize draft service")
				}
				ucOpts = append(ucOpts, usecase.WithDrafter(drafter))
				logging.Default().Info("Step drafting enabled")
			} else {
				logging.Default().Info("Gemini not configured, step drafting disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			var httpOpts []httpctrl.Options
			if noAuthTenant != "" {
				httpOpts = append(httpOpts, httpctrl.WithNoAuthn(noAuthTenant))
				logging.Default().Warn("Running in no-auth mode (development only)", "tenant", noAuthTenant)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}

// seedCatalog upserts catalog entries at startup so the resolver always
// sees the configured reference data
func seedCatalog(ctx context.Context, repo interfaces.Repository, hazards []*model.Hazard) error {
	for _, hazard := range hazards {
		if _, err := repo.Hazard().Put(ctx, hazard); err != nil {
			return goerr.Wrap(err, "failed to seed hazard catalog", goerr.V("name", hazard.Name))
		}
	}
	if len(hazards) > 0 {
		logging.Default().Info("Hazard catalog seeded", "entries", len(hazards))
	}
	return nil
}
