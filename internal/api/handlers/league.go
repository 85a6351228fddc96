package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/skillgraph/internal/api/middleware"
	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/service"
)

type LeagueHandler struct {
	svc *service.LeagueService
}

func NewLeagueHandler(svc *service.LeagueService) *LeagueHandler {
	return &LeagueHandler{svc: svc}
}

type createLeagueRequest struct {
	Name string `json:"name"`
	// Game overrides the default parameters field by field.
	Game json.RawMessage `json:"game"`
}

type createLeagueResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Game   domain.GameInfo `json:"game"`
	APIKey string          `json:"api_key"`
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	league := &domain.League{
		Name:       req.Name,
		APIKeyHash: middleware.HashAPIKey(apiKey),
		Game:       h.svc.Defaults(),
	}
	if len(req.Game) > 0 {
		if err := json.Unmarshal(req.Game, &league.Game); err != nil {
			writeError(w, http.StatusBadRequest, "invalid game")
			return
		}
	}

	if err := h.svc.Create(r.Context(), league); err != nil {
		if errors.Is(err, service.ErrInvalidGame) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create league")
		return
	}

	writeJSON(w, http.StatusCreated, createLeagueResponse{
		ID:     league.ID.String(),
		Name:   league.Name,
		Game:   league.Game,
		APIKey: apiKey,
	})
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sg_" + hex.EncodeToString(b), nil
}
