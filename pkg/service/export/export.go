package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// Snapshot is the read-only current-state view of a finalized APR
// handed to document consumers
type Snapshot struct {
	APR        *model.APR        `json:"apr"`
	Steps      []*model.Step     `json:"steps"`
	RiskItems  []*model.RiskItem `json:"risk_items"`
	ShareToken string            `json:"share_token"`
	ExportedAt time.Time         `json:"exported_at"`
	Digest     string            `json:"digest"`
}

// Service serializes export snapshots and optionally uploads them to a
// GCS bucket
type Service struct {
	client *storage.Client
	bucket string
}

// New creates an export service. An empty bucket disables upload; the
// snapshot is still built and returned.
func New(ctx context.Context, bucket string) (*Service, error) {
	svc := &Service{bucket: bucket}
	if bucket == "" {
		return svc, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	svc.client = client
	return svc, nil
}

// Build assembles the snapshot with a content digest over the document
// body, computed before the digest field itself is set
func (s *Service) Build(apr *model.APR, steps []*model.Step, items []*model.RiskItem, shareToken string) (*Snapshot, error) {
	snapshot := &Snapshot{
		APR:        apr,
		Steps:      steps,
		RiskItems:  items,
		ShareToken: shareToken,
		ExportedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode export snapshot")
	}
	sum := sha256.Sum256(body)
	snapshot.Digest = hex.EncodeToString(sum[:])

	return snapshot, nil
}

// Upload writes the snapshot document to the configured bucket. A
// service without a bucket returns immediately.
func (s *Service) Upload(ctx context.Context, snapshot *Snapshot) (string, error) {
	if s.client == nil {
		return "", nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode export snapshot")
	}

	object := fmt.Sprintf("exports/%s/apr_%d_%s.json",
		snapshot.APR.TenantID, snapshot.APR.ID, snapshot.ExportedAt.Format("20060102T150405Z"))
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write export object", goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close export object", goerr.V("object", object))
	}

	return object, nil
}

// Close releases the storage client
func (s *Service) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
