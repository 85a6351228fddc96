package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPartialPlay   = 1.0
	DefaultPartialUpdate = 1.0
	// MinPartialPlay keeps team-sum weights away from zero.
	MinPartialPlay = 0.0001
)

// Player is a participant in one match. PartialPlay is the fraction of the
// match the player took part in and PartialUpdate the fraction of the
// computed change applied to the stored rating.
type Player struct {
	ID            uuid.UUID `json:"id"`
	PartialPlay   float64   `json:"partial_play"`
	PartialUpdate float64   `json:"partial_update"`
}

func NewPlayer(id uuid.UUID) Player {
	return Player{ID: id, PartialPlay: DefaultPartialPlay, PartialUpdate: DefaultPartialUpdate}
}

// Weight is the player's contribution to the team performance.
func (p Player) Weight() float64 {
	if p.PartialPlay < MinPartialPlay {
		return MinPartialPlay
	}
	return p.PartialPlay
}

func (p Player) String() string {
	if p.PartialPlay != DefaultPartialPlay || p.PartialUpdate != DefaultPartialUpdate {
		return fmt.Sprintf("Player(%s, %g, %g)", p.ID, p.PartialPlay, p.PartialUpdate)
	}
	return "Player(" + p.ID.String() + ")"
}

// TeamMember pairs a player with the rating they bring into a match.
type TeamMember struct {
	Player Player
	Rating Rating
}

// Team is an ordered list of members.
type Team []TeamMember

func (t Team) Ratings() []Rating {
	out := make([]Rating, len(t))
	for i, m := range t {
		out[i] = m.Rating
	}
	return out
}

// Rating returns the rating of the player with the given id.
func (t Team) Rating(id uuid.UUID) (Rating, bool) {
	for _, m := range t {
		if m.Player.ID == id {
			return m.Rating, true
		}
	}
	return Rating{}, false
}

func (t Team) String() string {
	parts := make([]string, len(t))
	for i, m := range t {
		parts[i] = m.Player.String() + ": " + m.Rating.String()
	}
	return "Team{" + strings.Join(parts, ", ") + "}"
}

// Outcome is the result of one team against another.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLose Outcome = "lose"
)

// Match is a set of teams and the rank each finished at. Lower ranks are
// better and equal ranks are draws. Ranks may be nil when only quality is
// of interest.
type Match struct {
	Teams []Team
	Ranks []int
}

// Sort orders teams by rank. Teams of equal rank keep their relative order.
func (m *Match) Sort() {
	if len(m.Ranks) != len(m.Teams) {
		return
	}
	idx := make([]int, len(m.Teams))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.Ranks[idx[a]] < m.Ranks[idx[b]]
	})

	teams := make([]Team, len(m.Teams))
	ranks := make([]int, len(m.Ranks))
	for i, j := range idx {
		teams[i] = m.Teams[j]
		ranks[i] = m.Ranks[j]
	}
	m.Teams = teams
	m.Ranks = ranks
}

// Comparison reports how team i fared against team j.
func (m Match) Comparison(i, j int) Outcome {
	switch {
	case m.Ranks[i] < m.Ranks[j]:
		return OutcomeWin
	case m.Ranks[i] > m.Ranks[j]:
		return OutcomeLose
	}
	return OutcomeDraw
}

// Size returns the number of players across all teams.
func (m Match) Size() int {
	var n int
	for _, t := range m.Teams {
		n += len(t)
	}
	return n
}

// Rating looks a player up across all teams.
func (m Match) Rating(id uuid.UUID) (Rating, bool) {
	for _, t := range m.Teams {
		if r, ok := t.Rating(id); ok {
			return r, true
		}
	}
	return Rating{}, false
}
