package usecase

import (
	"context"
	"errors"

	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/model/auth"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// CreateAPRInput carries the writable top-level fields of an APR
type CreateAPRInput struct {
	Title        string
	RiskCategory string
	Description  string
	Worksite     string
	Sector       string
	Responsible  string
	Date         string
	ActivityID   string
	ActivityName string
}

func (in *CreateAPRInput) normalize() {
	in.Title = model.NormalizeText(in.Title, false)
	in.RiskCategory = model.NormalizeText(in.RiskCategory, false)
	in.Description = model.NormalizeText(in.Description, true)
	in.Worksite = model.NormalizeText(in.Worksite, false)
	in.Sector = model.NormalizeText(in.Sector, false)
	in.Responsible = model.NormalizeText(in.Responsible, false)
	in.Date = model.NormalizeText(in.Date, false)
	in.ActivityID = model.NormalizeText(in.ActivityID, false)
	in.ActivityName = model.NormalizeText(in.ActivityName, false)
}

func requireWriter(ctx context.Context) (*auth.Token, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !token.Role.CanWrite() {
		return nil, goerr.Wrap(ErrForbidden, "role cannot modify documents",
			goerr.V("role", token.Role.String()))
	}
	return token, nil
}

// CreateAPR creates a new draft document. Only the title is required at
// creation; the remaining fields are enforced at finalization.
func (uc *UseCases) CreateAPR(ctx context.Context, input CreateAPRInput) (*model.APR, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	input.normalize()
	if input.Title == "" {
		return nil, goerr.Wrap(ErrValidation, "title is required", goerr.V(FieldKey, "title"))
	}

	apr := &model.APR{
		Title:        input.Title,
		RiskCategory: input.RiskCategory,
		Description:  input.Description,
		Worksite:     input.Worksite,
		Sector:       input.Sector,
		Responsible:  input.Responsible,
		Date:         input.Date,
		ActivityID:   input.ActivityID,
		ActivityName: input.ActivityName,
		Status:       types.StatusDraft,
		CreatedBy:    token.Sub,
	}

	created, err := uc.repo.APR().Create(ctx, token.TenantID, apr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create apr")
	}

	uc.recordEvent(ctx, token, created.ID, model.EventCreated, map[string]any{
		"title": created.Title,
	})

	return created, nil
}

// GetAPR retrieves one document within the actor's tenant
func (uc *UseCases) GetAPR(ctx context.Context, id int64) (*model.APR, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return uc.getAPR(ctx, token.TenantID, id)
}

func (uc *UseCases) getAPR(ctx context.Context, tenantID string, id int64) (*model.APR, error) {
	apr, err := uc.repo.APR().Get(ctx, tenantID, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V(AprIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get apr", goerr.V(AprIDKey, id))
	}
	return apr, nil
}

// ListAPRs retrieves all of the tenant's documents, newest first
func (uc *UseCases) ListAPRs(ctx context.Context) ([]*model.APR, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	aprs, err := uc.repo.APR().List(ctx, token.TenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list aprs")
	}
	return aprs, nil
}

// UpdateAPR replaces the writable top-level fields. Allowed only while
// the document is editable; lifecycle fields are untouched.
func (uc *UseCases) UpdateAPR(ctx context.Context, id int64, input CreateAPRInput) (*model.APR, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	apr, err := uc.getAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !apr.Status.Editable() {
		return nil, goerr.Wrap(ErrNotEditable, "apr cannot be modified",
			goerr.V(AprIDKey, id), goerr.V(StatusKey, apr.Status.String()))
	}

	input.normalize()
	if input.Title == "" {
		return nil, goerr.Wrap(ErrValidation, "title is required", goerr.V(FieldKey, "title"))
	}

	changes := map[string]any{}
	apply := func(field string, dst *string, next string) {
		if *dst != next {
			changes[field] = map[string]any{"from": *dst, "to": next}
			*dst = next
		}
	}
	apply("title", &apr.Title, input.Title)
	apply("risk_category", &apr.RiskCategory, input.RiskCategory)
	apply("description", &apr.Description, input.Description)
	apply("worksite", &apr.Worksite, input.Worksite)
	apply("sector", &apr.Sector, input.Sector)
	apply("responsible", &apr.Responsible, input.Responsible)
	apply("date", &apr.Date, input.Date)
	apply("activity_id", &apr.ActivityID, input.ActivityID)
	apply("activity_name", &apr.ActivityName, input.ActivityName)

	updated, err := uc.repo.APR().Update(ctx, token.TenantID, apr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update apr", goerr.V(AprIDKey, id))
	}

	uc.recordEvent(ctx, token, id, model.EventUpdated, map[string]any{"changes": changes})

	return updated, nil
}

// ChangeStatus drives the document through the lifecycle table. A
// same-state request is a no-op; finalization has its own gate and is
// not reachable from here.
func (uc *UseCases) ChangeStatus(ctx context.Context, id int64, next types.Status) (*model.APR, error) {
	token, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	next = next.Normalize()
	if !next.IsValid() {
		return nil, goerr.Wrap(ErrValidation, "unknown status", goerr.V(FieldKey, "status"))
	}

	apr, err := uc.getAPR(ctx, token.TenantID, id)
	if err != nil {
		return nil, err
	}

	if apr.Status == next {
		return apr, nil
	}

	if !apr.Status.CanTransition(next) {
		return nil, goerr.Wrap(ErrInvalidTransition, "transition not allowed",
			goerr.V(AprIDKey, id),
			goerr.V("from", apr.Status.String()),
			goerr.V("to", next.String()))
	}

	previous := apr.Status
	apr.Status = next
	updated, err := uc.repo.APR().Update(ctx, token.TenantID, apr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to change apr status", goerr.V(AprIDKey, id))
	}

	action := model.EventStatusChanged
	if next == types.StatusArchived {
		action = model.EventArchived
	}
	uc.recordEvent(ctx, token, id, action, map[string]any{
		"from": previous.String(),
		"to":   next.String(),
	})

	return updated, nil
}

// ArchiveAPR is the soft delete: every state may transition to archived
func (uc *UseCases) ArchiveAPR(ctx context.Context, id int64) (*model.APR, error) {
	return uc.ChangeStatus(ctx, id, types.StatusArchived)
}

// DeleteAPR permanently removes the document and everything it owns.
// Admin only; archiving is the normal removal path.
func (uc *UseCases) DeleteAPR(ctx context.Context, id int64) error {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return err
	}
	if !token.Role.IsAdmin() {
		return goerr.Wrap(ErrForbidden, "only admins may delete documents",
			goerr.V("role", token.Role.String()))
	}

	if err := uc.repo.APR().Delete(ctx, token.TenantID, id); err != nil {
		if isRepoNotFound(err) {
			return goerr.Wrap(ErrNotFound, "apr not found", goerr.V(AprIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete apr", goerr.V(AprIDKey, id))
	}
	return nil
}

// ListEvents retrieves the APR's audit trail in creation order
func (uc *UseCases) ListEvents(ctx context.Context, aprID int64) ([]*model.Event, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.getAPR(ctx, token.TenantID, aprID); err != nil {
		return nil, err
	}

	events, err := uc.repo.Event().ListByAPR(ctx, token.TenantID, aprID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list events", goerr.V(AprIDKey, aprID))
	}
	return events, nil
}

// recordEvent appends an audit entry. Audit failures are logged by the
// repository but never fail the operation that triggered them.
func (uc *UseCases) recordEvent(ctx context.Context, token *auth.Token, aprID int64, action string, payload map[string]any) {
	event := &model.Event{
		AprID:     aprID,
		Action:    action,
		ActorSub:  token.Sub,
		ActorName: token.Name,
		ActorRole: token.Role.String(),
		Payload:   payload,
	}
	if _, err := uc.repo.Event().Append(ctx, token.TenantID, event); err != nil {
		_ = errutil.Handle(ctx, err, "failed to record audit event")
	}
}

func isRepoNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}
