package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

type aprRequest struct {
	Title        string `json:"title"`
	RiskCategory string `json:"risk_category"`
	Description  string `json:"description"`
	Worksite     string `json:"worksite"`
	Sector       string `json:"sector"`
	Responsible  string `json:"responsible"`
	Date         string `json:"date"`
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name"`
}

func (req *aprRequest) toInput() usecase.CreateAPRInput {
	return usecase.CreateAPRInput{
		Title:        req.Title,
		RiskCategory: req.RiskCategory,
		Description:  req.Description,
		Worksite:     req.Worksite,
		Sector:       req.Sector,
		Responsible:  req.Responsible,
		Date:         req.Date,
		ActivityID:   req.ActivityID,
		ActivityName: req.ActivityName,
	}
}

type aprResponse struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	RiskCategory    string            `json:"risk_category"`
	Description     string            `json:"description"`
	Worksite        string            `json:"worksite"`
	Sector          string            `json:"sector"`
	Responsible     string            `json:"responsible"`
	Date            string            `json:"date"`
	ActivityID      string            `json:"activity_id"`
	ActivityName    string            `json:"activity_name"`
	Status          string            `json:"status"`
	TemplateVersion string            `json:"template_version,omitempty"`
	SourceHashes    map[string]string `json:"source_hashes,omitempty"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

func toAPRResponse(apr *model.APR) *aprResponse {
	return &aprResponse{
		ID:              apr.ID,
		Title:           apr.Title,
		RiskCategory:    apr.RiskCategory,
		Description:     apr.Description,
		Worksite:        apr.Worksite,
		Sector:          apr.Sector,
		Responsible:     apr.Responsible,
		Date:            apr.Date,
		ActivityID:      apr.ActivityID,
		ActivityName:    apr.ActivityName,
		Status:          apr.Status.String(),
		TemplateVersion: apr.TemplateVersion,
		SourceHashes:    apr.SourceHashes,
		CreatedBy:       apr.CreatedBy,
		CreatedAt:       apr.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       apr.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid id in path",
			goerr.V(usecase.FieldKey, name))
	}
	return id, nil
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "malformed request body",
			goerr.V(usecase.FieldKey, "body"))
	}
	return nil
}

func (s *Server) createAPR(w http.ResponseWriter, r *http.Request) {
	var req aprRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	apr, err := s.uc.CreateAPR(r.Context(), req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toAPRResponse(apr))
}

func (s *Server) listAPRs(w http.ResponseWriter, r *http.Request) {
	aprs, err := s.uc.ListAPRs(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*aprResponse, 0, len(aprs))
	for _, apr := range aprs {
		out = append(out, toAPRResponse(apr))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"aprs": out})
}

func (s *Server) getAPR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	apr, err := s.uc.GetAPR(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toAPRResponse(apr))
}

func (s *Server) updateAPR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req aprRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	apr, err := s.uc.UpdateAPR(r.Context(), id, req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toAPRResponse(apr))
}

func (s *Server) deleteAPR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.uc.DeleteAPR(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	apr, err := s.uc.ChangeStatus(r.Context(), id, types.Status(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toAPRResponse(apr))
}

func (s *Server) finalizeAPR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		ResponsibleConfirmation string `json:"responsible_confirmation"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	apr, err := s.uc.FinalizeAPR(r.Context(), id, req.ResponsibleConfirmation)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toAPRResponse(apr))
}

func (s *Server) rebuildRiskItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.uc.RebuildRiskItems(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]int{
		"created": result.Created,
		"invalid": result.Invalid,
	})
}

func (s *Server) exportAPR(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	snapshot, err := s.uc.ExportAPR(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	events, err := s.uc.ListEvents(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) draftSteps(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		MaxSteps int `json:"max_steps"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	steps, err := s.uc.DraftSteps(r.Context(), id, req.MaxSteps)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*stepResponse, 0, len(steps))
	for _, step := range steps {
		out = append(out, toStepResponse(step))
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{"steps": out})
}
