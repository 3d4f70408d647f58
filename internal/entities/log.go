package entities

// GameLog is an append-only audit entry. The core only ever creates these;
// the read path is a reporting concern.
type GameLog struct {
	ID            string         `json:"id"`
	GameID        string         `json:"game_id"`
	SceneID       string         `json:"scene_id,omitempty"`
	ActorInGameID string         `json:"actor_in_game_id,omitempty"`
	ActionType    string         `json:"action_type"`
	Payload       map[string]any `json:"payload,omitempty"`
	CreatedAt     int64          `json:"created_at"`
}
