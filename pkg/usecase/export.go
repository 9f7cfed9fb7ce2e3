package usecase

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/service/export"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ExportAPR builds the read-only snapshot of an approved or final
// document. The status gate is re-checked here because status may have
// changed since finalization; stored risk items are re-validated
// against the matrix without rebuilding, since the document is no
// longer editable.
func (uc *UseCases) ExportAPR(ctx context.Context, id int64) (*export.Snapshot, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	apr, err := uc.getAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !apr.Status.Exportable() {
		return nil, goerr.Wrap(ErrNotFinal, "apr is not exportable",
			goerr.V(AprIDKey, id), goerr.V(StatusKey, apr.Status.String()))
	}

	steps, err := uc.repo.Step().ListByAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list steps", goerr.V(AprIDKey, id))
	}
	items, err := uc.repo.RiskItem().ListByAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk items", goerr.V(AprIDKey, id))
	}
	if model.HasInvalidRiskItems(items, uc.matrix) {
		return nil, goerr.Wrap(ErrRiskScoreInvalid, "apr holds invalid risk scores",
			goerr.V(AprIDKey, id))
	}

	if uc.exporter == nil {
		return nil, goerr.New("export service is not configured")
	}

	snapshot, err := uc.exporter.Build(apr, steps, items, uuid.NewString())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build export snapshot", goerr.V(AprIDKey, id))
	}

	object, err := uc.exporter.Upload(ctx, snapshot)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload export snapshot", goerr.V(AprIDKey, id))
	}

	payload := map[string]any{
		"share_token": snapshot.ShareToken,
		"digest":      snapshot.Digest,
	}
	if object != "" {
		payload["object"] = object
	}
	uc.recordEvent(ctx, token, id, model.EventExported, payload)

	return snapshot, nil
}
