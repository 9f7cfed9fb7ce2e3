package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engenharia-apr/aprd/pkg/service/export"
)

// Export holds CLI flags for snapshot export
type Export struct {
	bucket string
}

// Flags returns CLI flags for export configuration
func (e *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-bucket",
			Usage:       "GCS bucket for export snapshots (upload disabled when empty)",
			Category:    "Export",
			Sources:     cli.EnvVars("APRD_EXPORT_BUCKET"),
			Destination: &e.bucket,
		},
	}
}

// Bucket returns the configured bucket name
func (e *Export) Bucket() string {
	return e.bucket
}

// Configure creates the export service. With no bucket the service
// still builds snapshots, it just skips the upload.
func (e *Export) Configure(ctx context.Context) (*export.Service, error) {
	svc, err := export.New(ctx, e.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure export service")
	}
	return svc, nil
}
