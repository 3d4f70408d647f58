// Package realtime pushes state-change events to websocket subscribers
// grouped into per-game rooms. Delivery is fire-and-forget, at most once;
// action resolution never blocks on a slow socket.
package realtime

//go:generate mockgen -destination=mock/mock_broadcaster.go -package=realtimemock github.com/greyhelm/vtt-api/internal/realtime Broadcaster

// Event names emitted by action resolution and combat lifecycle.
const (
	EventCombatStarted       = "combat.started"
	EventCombatEnded         = "combat.ended"
	EventCombatTurnChanged   = "combat.turn.changed"
	EventCombatRoundChanged  = "combat.round.changed"
	EventAttackResolved      = "attack.resolved"
	EventSpellCast           = "spell.cast"
	EventActorHPUpdated      = "actor.hp.updated"
	EventActorDeathSave      = "actor.death.save"
	EventConditionApplied    = "condition.applied"
	EventConditionRemoved    = "condition.removed"
	EventConcentrationBroken = "spell.concentration.broken"
	EventTokenMoved          = "token.moved"
	EventPlayerJoined        = "game.player.joined"
)

// Envelope is the wire shape of every pushed event.
type Envelope struct {
	Event   string `json:"event"`
	GameID  string `json:"game_id"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster is the push sink used by the orchestrators.
type Broadcaster interface {
	// EmitToRoom delivers the event to every socket subscribed to the
	// game's room. Errors are swallowed; emission never fails an action.
	EmitToRoom(gameID, event string, payload any)
}
