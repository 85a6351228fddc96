package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlayerProfile is a registered player together with the rating the league
// currently holds for them.
type PlayerProfile struct {
	ID            uuid.UUID  `json:"id"`
	LeagueID      uuid.UUID  `json:"league_id,omitempty"`
	ExternalID    string     `json:"external_id"`
	Name          string     `json:"name"`
	Rating        Rating     `json:"rating"`
	MatchesPlayed int        `json:"matches_played"`
	LastPlayedAt  *time.Time `json:"last_played_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LastActive is the last match time, or the registration time for players
// who never played.
func (p *PlayerProfile) LastActive() time.Time {
	if p.LastPlayedAt != nil {
		return *p.LastPlayedAt
	}
	return p.CreatedAt
}

type PlayerWithDistance struct {
	PlayerProfile
	Distance float64 `json:"distance"`
}

// SkillVector embeds a rating for nearest-neighbour search.
func SkillVector(r Rating) []float32 {
	return []float32{float32(r.Mean), float32(r.Stdev)}
}
