package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchRecord is a rated match as stored after the ratings were applied.
type MatchRecord struct {
	ID           uuid.UUID          `json:"id"`
	LeagueID     uuid.UUID          `json:"league_id,omitempty"`
	Quality      float64            `json:"quality"`
	Probability  float64            `json:"probability"`
	Iterations   int                `json:"iterations"`
	Converged    bool               `json:"converged"`
	Participants []MatchParticipant `json:"participants"`
	CreatedAt    time.Time          `json:"created_at"`
}

type MatchParticipant struct {
	PlayerID      uuid.UUID `json:"player_id"`
	Team          int       `json:"team"`
	Rank          int       `json:"rank"`
	PartialPlay   float64   `json:"partial_play"`
	PartialUpdate float64   `json:"partial_update"`
	Before        Rating    `json:"before"`
	After         Rating    `json:"after"`
}
