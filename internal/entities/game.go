// Package entities holds the store-agnostic domain types. These are
// data-only structs; rules live in internal/engine and the orchestrators.
package entities

// GameStatus gates joining and play.
type GameStatus string

// Game statuses
const (
	GameStatusActive   GameStatus = "active"
	GameStatusPaused   GameStatus = "paused"
	GameStatusArchived GameStatus = "archived"
)

// Role is a player's role within a game.
type Role string

// Roles
const (
	RoleDM     Role = "dm"
	RolePlayer Role = "player"
)

// Game is a session container. Exactly one active DM is expected per game.
type Game struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         GameStatus `json:"status"`
	MaxPlayers     int32      `json:"max_players"`
	CurrentSceneID string     `json:"current_scene_id,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      int64      `json:"created_at"`
	UpdatedAt      int64      `json:"updated_at"`
}

// GamePlayer is a membership row. Soft-removed on kick/leave via IsActive.
type GamePlayer struct {
	GameID              string `json:"game_id"`
	UserID              string `json:"user_id"`
	Role                Role   `json:"role"`
	IsActive            bool   `json:"is_active"`
	AssignedCharacterID string `json:"assigned_character_id,omitempty"`
	JoinedAt            int64  `json:"joined_at"`
}

// Scene is a map/backdrop owned by one game.
type Scene struct {
	ID        string `json:"id"`
	GameID    string `json:"game_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Token is a positioned marker on a scene's grid.
type Token struct {
	ID            string `json:"id"`
	GameID        string `json:"game_id"`
	SceneID       string `json:"scene_id"`
	ActorInGameID string `json:"actor_in_game_id,omitempty"`
	Label         string `json:"label,omitempty"`
	X             int32  `json:"x"`
	Y             int32  `json:"y"`
}
