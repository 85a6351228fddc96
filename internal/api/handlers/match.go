package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/skillgraph/internal/api/middleware"
	"github.com/Harshitk-cp/skillgraph/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type MatchHandler struct {
	svc *service.RatingService
}

func NewMatchHandler(svc *service.RatingService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type matchSeat struct {
	PlayerID      uuid.UUID `json:"player_id"`
	PartialPlay   *float64  `json:"partial_play"`
	PartialUpdate *float64  `json:"partial_update"`
}

type matchRequest struct {
	Teams [][]matchSeat `json:"teams"`
	Ranks []int         `json:"ranks"`
}

func (req matchRequest) input() service.MatchInput {
	in := service.MatchInput{Ranks: req.Ranks, Teams: make([][]service.MatchEntry, len(req.Teams))}
	for i, team := range req.Teams {
		entries := make([]service.MatchEntry, len(team))
		for j, seat := range team {
			entries[j] = service.MatchEntry{
				PlayerID:      seat.PlayerID,
				PartialPlay:   seat.PartialPlay,
				PartialUpdate: seat.PartialUpdate,
			}
		}
		in.Teams[i] = entries
	}
	return in
}

func decodeMatch(w http.ResponseWriter, r *http.Request) (matchRequest, bool) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if len(req.Teams) < 2 {
		writeError(w, http.StatusBadRequest, "at least two teams are required")
		return req, false
	}
	for _, team := range req.Teams {
		for _, seat := range team {
			if seat.PlayerID == uuid.Nil {
				writeError(w, http.StatusBadRequest, "player_id is required")
				return req, false
			}
		}
	}
	return req, true
}

func writeMatchError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidMatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRatingConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeMatch(w, r)
	if !ok {
		return
	}
	if len(req.Ranks) != len(req.Teams) {
		writeError(w, http.StatusBadRequest, "ranks must have one entry per team")
		return
	}

	record, err := h.svc.Rate(r.Context(), league, req.input())
	if err != nil {
		writeMatchError(w, err, "failed to rate match")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *MatchHandler) Quality(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeMatch(w, r)
	if !ok {
		return
	}

	quality, err := h.svc.Quality(r.Context(), league, req.input())
	if err != nil {
		writeMatchError(w, err, "failed to compute match quality")
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"quality": quality})
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	league := middleware.LeagueFromContext(r.Context())
	if league == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	match, err := h.svc.GetMatch(r.Context(), id, league.ID)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get match")
		return
	}

	writeJSON(w, http.StatusOK, match)
}
