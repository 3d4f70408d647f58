// Package games provides storage for games, memberships, and scenes.
package games

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=gamesmock github.com/greyhelm/vtt-api/internal/repositories/games Repository

// CreateGameInput contains the game and its creator's membership row.
// Both are written in one transaction so a game never exists without a DM.
type CreateGameInput struct {
	Game    *entities.Game
	Creator *entities.GamePlayer
}

// CreateGameOutput contains the stored game
type CreateGameOutput struct {
	Game *entities.Game
}

// GetGameInput identifies a game
type GetGameInput struct {
	ID string
}

// GetGameOutput contains the game
type GetGameOutput struct {
	Game *entities.Game
}

// UpdateGameInput replaces a game row
type UpdateGameInput struct {
	Game *entities.Game
}

// UpdateGameOutput contains the updated game
type UpdateGameOutput struct {
	Game *entities.Game
}

// GetPlayerInput identifies a membership row
type GetPlayerInput struct {
	GameID string
	UserID string
}

// GetPlayerOutput contains the membership row
type GetPlayerOutput struct {
	Player *entities.GamePlayer
}

// PutPlayerInput upserts a membership row
type PutPlayerInput struct {
	Player *entities.GamePlayer
}

// PutPlayerOutput contains the stored membership row
type PutPlayerOutput struct {
	Player *entities.GamePlayer
}

// ListPlayersInput identifies a game
type ListPlayersInput struct {
	GameID string
}

// ListPlayersOutput contains all membership rows, active or not
type ListPlayersOutput struct {
	Players []*entities.GamePlayer
}

// CreateSceneInput contains the scene to store
type CreateSceneInput struct {
	Scene *entities.Scene
}

// CreateSceneOutput contains the stored scene
type CreateSceneOutput struct {
	Scene *entities.Scene
}

// GetSceneInput identifies a scene
type GetSceneInput struct {
	ID string
}

// GetSceneOutput contains the scene
type GetSceneOutput struct {
	Scene *entities.Scene
}

// Repository defines the storage interface for games and memberships
type Repository interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*CreateGameOutput, error)
	GetGame(ctx context.Context, input GetGameInput) (*GetGameOutput, error)
	UpdateGame(ctx context.Context, input UpdateGameInput) (*UpdateGameOutput, error)

	// GetPlayer returns NotFound when the user has no membership row.
	GetPlayer(ctx context.Context, input GetPlayerInput) (*GetPlayerOutput, error)
	PutPlayer(ctx context.Context, input PutPlayerInput) (*PutPlayerOutput, error)
	ListPlayers(ctx context.Context, input ListPlayersInput) (*ListPlayersOutput, error)

	CreateScene(ctx context.Context, input CreateSceneInput) (*CreateSceneOutput, error)
	GetScene(ctx context.Context, input GetSceneInput) (*GetSceneOutput, error)
}
