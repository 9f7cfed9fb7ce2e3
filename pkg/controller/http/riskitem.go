package http

import (
	"net/http"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

type riskItemResponse struct {
	ID              int64  `json:"id"`
	AprID           int64  `json:"apr_id"`
	StepID          int64  `json:"step_id"`
	HazardID        int64  `json:"hazard_id,omitempty"`
	RiskDescription string `json:"risk_description"`
	Probability     int    `json:"probability"`
	Severity        int    `json:"severity"`
	Score           int    `json:"score"`
	Level           string `json:"level"`
}

func toRiskItemResponse(item *model.RiskItem) *riskItemResponse {
	return &riskItemResponse{
		ID:              item.ID,
		AprID:           item.AprID,
		StepID:          item.StepID,
		HazardID:        item.HazardID,
		RiskDescription: item.RiskDescription,
		Probability:     item.Probability,
		Severity:        item.Severity,
		Score:           item.Score,
		Level:           item.Level,
	}
}

func (s *Server) listRiskItems(w http.ResponseWriter, r *http.Request) {
	aprID, err := pathID(r, "aprID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	items, err := s.uc.ListRiskItems(r.Context(), aprID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*riskItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toRiskItemResponse(item))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"risk_items": out})
}

func (s *Server) overrideRiskItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Probability int `json:"probability"`
		Severity    int `json:"severity"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := s.uc.OverrideRiskItem(r.Context(), id, req.Probability, req.Severity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toRiskItemResponse(item))
}
