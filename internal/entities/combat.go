package entities

// Combat is one encounter within a game. At most one combat per game is
// active at a time; an ended combat is never reactivated.
type Combat struct {
	ID               string `json:"id"`
	GameID           string `json:"game_id"`
	SceneID          string `json:"scene_id"`
	Round            int32  `json:"round"`
	CurrentTurnIndex int32  `json:"current_turn_index"`
	IsActive         bool   `json:"is_active"`
	StartedAt        int64  `json:"started_at"`
	EndedAt          int64  `json:"ended_at,omitempty"`
}

// CombatParticipant enrolls an actor into a combat's turn order. TurnOrder
// is dense 0..N-1 by descending initiative, ties kept in insertion order.
// IsConscious is informational; an unconscious participant still occupies
// a turn slot.
type CombatParticipant struct {
	ID            string `json:"id"`
	CombatID      string `json:"combat_id"`
	ActorInGameID string `json:"actor_in_game_id"`
	Initiative    int32  `json:"initiative"`
	TurnOrder     int32  `json:"turn_order"`
	IsActive      bool   `json:"is_active"`
	IsConscious   bool   `json:"is_conscious"`
}

// ActorCondition attaches a condition to an actor. Two expiry idioms
// coexist: round-based (ExpiresOnRound, swept at round boundaries) for
// combat-applied conditions, and wall-clock (ExpiresAt) for manual ones.
// Nil/zero for both means indefinite.
type ActorCondition struct {
	ID             string `json:"id"`
	ActorInGameID  string `json:"actor_in_game_id"`
	GameID         string `json:"game_id"`
	ConditionID    string `json:"condition_id"`
	AppliedOnRound int32  `json:"applied_on_round,omitempty"`
	ExpiresOnRound *int32 `json:"expires_on_round,omitempty"`
	ExpiresAt      int64  `json:"expires_at,omitempty"`
	AppliedAt      int64  `json:"applied_at"`
}
