// Package combats provides storage for combats and their turn order.
package combats

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=combatsmock github.com/greyhelm/vtt-api/internal/repositories/combats Repository

// State is a combat row together with its full participant list in stored
// (insertion) order. Turn-order mutations operate on the whole state so
// reorders and index advances commit atomically.
type State struct {
	Combat       *entities.Combat
	Participants []entities.CombatParticipant
}

// CreateInput contains the combat to activate
type CreateInput struct {
	Combat *entities.Combat
}

// CreateOutput contains the stored combat
type CreateOutput struct {
	Combat *entities.Combat
}

// GetInput identifies a combat
type GetInput struct {
	ID string
}

// GetOutput contains the combat
type GetOutput struct {
	Combat *entities.Combat
}

// GetActiveInput identifies a game
type GetActiveInput struct {
	GameID string
}

// GetActiveOutput contains the game's active combat
type GetActiveOutput struct {
	Combat *entities.Combat
}

// GetStateInput identifies a combat
type GetStateInput struct {
	CombatID string
}

// GetStateOutput contains the combat state
type GetStateOutput struct {
	State *State
}

// MutateInput runs Fn against a fresh read of the combat state and commits
// only if neither the combat row nor the participant list changed
// concurrently.
type MutateInput struct {
	CombatID string
	Fn       func(state *State) error
}

// MutateOutput contains the committed state
type MutateOutput struct {
	State *State
}

// EndInput identifies the game whose active combat ends
type EndInput struct {
	Combat *entities.Combat
}

// EndOutput contains the ended combat
type EndOutput struct {
	Combat *entities.Combat
}

// Repository defines the storage interface for combats
type Repository interface {
	// Create activates the combat, enforcing at most one active combat
	// per game; a second activation fails with AlreadyExists.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetActive returns NotFound when the game has no active combat.
	GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error)

	GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error)

	// Mutate serializes turn-order and turn-index mutations per combat.
	Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error)

	// End deactivates the combat and releases the game's active pointer.
	End(ctx context.Context, input EndInput) (*EndOutput, error)
}
