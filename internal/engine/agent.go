package engine

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/hexfield/internal/world"
)

// Agent is a minimal mobile entity: it wanders the field by requesting
// paths and stepping along them. It stands in for the AI/movement
// collaborators that consume the grid and path service.
type Agent struct {
	ID        uuid.UUID
	Name      string
	Pos       world.HexCoord
	Goal      world.HexCoord
	Health    int
	MaxHealth int

	// Route is the remaining path; Route[0] is the next cell to enter.
	Route []world.HexCoord

	// StepsPerTick is the agent's action-point budget: how many route
	// steps it may consume each tick.
	StepsPerTick int

	// PendingRequest is the id of the outstanding path request, or 0.
	PendingRequest int64
}

// NewAgent creates an agent standing at pos.
func NewAgent(rng *rand.Rand, n int, pos world.HexCoord) *Agent {
	return &Agent{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("scout-%02d", n),
		Pos:          pos,
		Health:       80 + rng.Intn(21),
		MaxHealth:    100,
		StepsPerTick: 1,
	}
}

// Occupant returns the cell occupant entry for this agent.
func (a *Agent) Occupant() world.Occupant {
	return world.Occupant{
		Name:          a.Name,
		CurrentHealth: a.Health,
		MaxHealth:     a.MaxHealth,
		Kind:          world.OccupantUnit,
		EntityID:      a.ID,
	}
}
