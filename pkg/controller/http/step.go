package http

import (
	"net/http"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/usecase"
)

type stepRequest struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
	Hazards     string `json:"hazards"`
	Risks       string `json:"risks"`
	Controls    string `json:"controls"`
	PPE         string `json:"ppe"`
	Regulations string `json:"regulations"`
}

func (req *stepRequest) toInput() usecase.StepInput {
	return usecase.StepInput{
		Order:       req.Order,
		Description: req.Description,
		Hazards:     req.Hazards,
		Risks:       req.Risks,
		Controls:    req.Controls,
		PPE:         req.PPE,
		Regulations: req.Regulations,
	}
}

type stepResponse struct {
	ID          int64  `json:"id"`
	AprID       int64  `json:"apr_id"`
	Order       int    `json:"order"`
	Description string `json:"description"`
	Hazards     string `json:"hazards"`
	Risks       string `json:"risks"`
	Controls    string `json:"controls"`
	PPE         string `json:"ppe"`
	Regulations string `json:"regulations"`
}

func toStepResponse(step *model.Step) *stepResponse {
	return &stepResponse{
		ID:          step.ID,
		AprID:       step.AprID,
		Order:       step.Order,
		Description: step.Description,
		Hazards:     step.Hazards,
		Risks:       step.Risks,
		Controls:    step.Controls,
		PPE:         step.PPE,
		Regulations: step.Regulations,
	}
}

func (s *Server) addStep(w http.ResponseWriter, r *http.Request) {
	aprID, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req stepRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	step, err := s.uc.AddStep(r.Context(), aprID, req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toStepResponse(step))
}

type bulkStepsRequest struct {
	Replace bool          `json:"replace"`
	Steps   []stepRequest `json:"steps"`
}

func (s *Server) bulkAddSteps(w http.ResponseWriter, r *http.Request) {
	aprID, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req bulkStepsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	inputs := make([]usecase.StepInput, 0, len(req.Steps))
	for _, step := range req.Steps {
		inputs = append(inputs, step.toInput())
	}

	steps, err := s.uc.BulkAddSteps(r.Context(), aprID, req.Replace, inputs)
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

func (s *Server) listSteps(w http.ResponseWriter, r *http.Request) {
	aprID, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	steps, err := s.uc.ListSteps(r.Context(), aprID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*stepResponse, 0, len(steps))
	for _, step := range steps {
		out = append(out, toStepResponse(step))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"steps": out})
}

func (s *Server) getStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stepID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	step, err := s.uc.GetStep(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toStepResponse(step))
}

func (s *Server) updateStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stepID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req stepRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	step, err := s.uc.UpdateStep(r.Context(), id, req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toStepResponse(step))
}

func (s *Server) deleteStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "stepID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.uc.DeleteStep(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
