package http

import (
	"net/http"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

type hazardRequest struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	HazardType         string   `json:"hazard_type"`
	DefaultProbability int      `json:"default_probability"`
	DefaultSeverity    int      `json:"default_severity"`
	Consequences       []string `json:"consequences"`
	Safeguards         []string `json:"safeguards"`
}

type hazardResponse struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	HazardType         string   `json:"hazard_type"`
	DefaultProbability int      `json:"default_probability"`
	DefaultSeverity    int      `json:"default_severity"`
	Consequences       []string `json:"consequences"`
	Safeguards         []string `json:"safeguards"`
}

func toHazardResponse(h *model.Hazard) *hazardResponse {
	return &hazardResponse{
		ID:                 h.ID,
		Name:               h.Name,
		HazardType:         h.HazardType,
		DefaultProbability: h.DefaultProbability,
		DefaultSeverity:    h.DefaultSeverity,
		Consequences:       h.Consequences,
		Safeguards:         h.Safeguards,
	}
}

func (s *Server) listHazards(w http.ResponseWriter, r *http.Request) {
	hazards, err := s.uc.ListHazards(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*hazardResponse, 0, len(hazards))
	for _, hazard := range hazards {
		out = append(out, toHazardResponse(hazard))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"hazards": out})
}

func (s *Server) importHazards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hazards []hazardRequest `json:"hazards"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	hazards := make([]*model.Hazard, 0, len(req.Hazards))
	for _, h := range req.Hazards {
		hazards = append(hazards, &model.Hazard{
			ID:                 h.ID,
			Name:               h.Name,
			HazardType:         h.HazardType,
			DefaultProbability: h.DefaultProbability,
			DefaultSeverity:    h.DefaultSeverity,
			Consequences:       h.Consequences,
			Safeguards:         h.Safeguards,
		})
	}

	count, err := s.uc.ImportHazards(r.Context(), hazards)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]int{"imported": count})
}
