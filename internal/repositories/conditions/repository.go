// Package conditions provides storage for conditions applied to actors.
package conditions

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=conditionsmock github.com/greyhelm/vtt-api/internal/repositories/conditions Repository

// ApplyInput contains the applied condition to store
type ApplyInput struct {
	Condition *entities.ActorCondition
}

// ApplyOutput contains the stored condition
type ApplyOutput struct {
	Condition *entities.ActorCondition
}

// GetInput identifies an applied condition
type GetInput struct {
	ID string
}

// GetOutput contains the applied condition
type GetOutput struct {
	Condition *entities.ActorCondition
}

// ListForActorInput identifies an actor
type ListForActorInput struct {
	ActorInGameID string
}

// ListForActorOutput contains the actor's applied conditions
type ListForActorOutput struct {
	Conditions []*entities.ActorCondition
}

// ListForGameInput identifies a game
type ListForGameInput struct {
	GameID string
}

// ListForGameOutput contains every applied condition in the game
type ListForGameOutput struct {
	Conditions []*entities.ActorCondition
}

// DeleteInput identifies the applied condition to remove
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the removed condition
type DeleteOutput struct {
	Condition *entities.ActorCondition
}

// ExpireDueInput selects conditions whose round-based expiry has come due
type ExpireDueInput struct {
	GameID string
	Round  int32
}

// ExpireDueOutput lists the conditions that were removed
type ExpireDueOutput struct {
	Expired []*entities.ActorCondition
}

// Repository defines the storage interface for applied conditions
type Repository interface {
	Apply(ctx context.Context, input ApplyInput) (*ApplyOutput, error)

	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	ListForActor(ctx context.Context, input ListForActorInput) (*ListForActorOutput, error)

	ListForGame(ctx context.Context, input ListForGameInput) (*ListForGameOutput, error)

	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ExpireDue removes every condition in the game whose ExpiresOnRound
	// is at or before the given round and returns the removed rows.
	ExpireDue(ctx context.Context, input ExpireDueInput) (*ExpireDueOutput, error)
}
