package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/skillgraph/internal/api/middleware"
	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PlayerHandler struct {
	svc *service.PlayerService
}

func NewPlayerHandler(svc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

type createPlayerRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

type playerResponse struct {
	*domain.PlayerProfile
	ConservativeRating float64 `json:"conservative_rating"`
}

func newPlayerResponse(p *domain.PlayerProfile, game domain.GameInfo) playerResponse {
	return playerResponse{
		PlayerProfile:      p,
		ConservativeRating: p.Rating.ConservativeRating(game.ConservativeMultiplier),
	}
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ExternalID == "" {
		writeError(w, http.StatusBadRequest, "external_id is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	player := &domain.PlayerProfile{
		ExternalID: req.ExternalID,
		Name:       req.Name,
	}

	if err := h.svc.Create(r.Context(), league, player); err != nil {
		if errors.Is(err, service.ErrPlayerConflict) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}

	writeJSON(w, http.StatusCreated, newPlayerResponse(player, league.Game))
}

func (h *PlayerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	player, err := h.svc.GetByID(r.Context(), id, league.ID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}

	writeJSON(w, http.StatusOK, newPlayerResponse(player, league.Game))
}

func (h *PlayerHandler) Opponents(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	opponents, err := h.svc.Opponents(r.Context(), id, league.ID, limit)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to find opponents")
		return
	}
	if opponents == nil {
		opponents = []domain.PlayerWithDistance{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"opponents": opponents})
}

func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	players, err := h.svc.Leaderboard(r.Context(), league, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]playerResponse, len(players))
	for i := range players {
		entries[i] = newPlayerResponse(&players[i], league.Game)
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": entries})
}
