package domain

import (
	"time"

	"github.com/google/uuid"
)

// League is an isolated population of players sharing one set of game
// parameters. Every authenticated request acts on behalf of a league.
type League struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
	Game       GameInfo  `json:"game"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
