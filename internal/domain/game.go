package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

const (
	DefaultInitialMean            = 25.0
	DefaultInitialStdev           = DefaultInitialMean / 3
	DefaultBeta                   = DefaultInitialMean / 6
	DefaultDynamicsFactor         = DefaultInitialMean / 300
	DefaultDrawProbability        = 0.10
	DefaultConservativeMultiplier = 3.0
)

var ErrInvalidGameInfo = errors.New("invalid game parameters")

// GameInfo holds the parameters of the game being rated.
type GameInfo struct {
	InitialMean            float64 `json:"initial_mean"`
	InitialStdev           float64 `json:"initial_stdev"`
	Beta                   float64 `json:"beta"`
	DynamicsFactor         float64 `json:"dynamics_factor"`
	DrawProbability        float64 `json:"draw_probability"`
	ConservativeMultiplier float64 `json:"conservative_multiplier"`
}

func DefaultGameInfo() GameInfo {
	return GameInfo{
		InitialMean:            DefaultInitialMean,
		InitialStdev:           DefaultInitialStdev,
		Beta:                   DefaultBeta,
		DynamicsFactor:         DefaultDynamicsFactor,
		DrawProbability:        DefaultDrawProbability,
		ConservativeMultiplier: DefaultConservativeMultiplier,
	}
}

// DrawMargin is the performance difference under which a match is a draw.
func (g GameInfo) DrawMargin() float64 {
	return gaussian.InverseCumulativeTo(0.5*(g.DrawProbability+1), 0, 1) * math.Sqrt(1+1) * g.Beta
}

// DefaultRating is the rating a new player starts with.
func (g GameInfo) DefaultRating() Rating {
	return NewRating(g.InitialMean, g.InitialStdev)
}

func (g GameInfo) Validate() error {
	switch {
	case g.InitialStdev <= 0:
		return fmt.Errorf("%w: initial stdev must be positive", ErrInvalidGameInfo)
	case g.Beta <= 0:
		return fmt.Errorf("%w: beta must be positive", ErrInvalidGameInfo)
	case g.DynamicsFactor < 0:
		return fmt.Errorf("%w: dynamics factor must not be negative", ErrInvalidGameInfo)
	case g.DrawProbability < 0 || g.DrawProbability >= 1:
		return fmt.Errorf("%w: draw probability must be in [0, 1)", ErrInvalidGameInfo)
	}
	return nil
}
