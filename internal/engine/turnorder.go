package engine

import (
	"sort"

	"github.com/greyhelm/vtt-api/internal/entities"
)

// Reorder sorts participants by initiative descending and assigns dense
// turn_order values 0..N-1. The sort is stable, so initiative ties keep
// insertion order.
func Reorder(participants []entities.CombatParticipant) {
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Initiative > participants[j].Initiative
	})
	for i := range participants {
		participants[i].TurnOrder = int32(i)
	}
}

// SortByTurnOrder orders participants by their assigned turn_order.
func SortByTurnOrder(participants []entities.CombatParticipant) {
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].TurnOrder < participants[j].TurnOrder
	})
}

// ActiveParticipants filters to the active subset, preserving turn order.
func ActiveParticipants(participants []entities.CombatParticipant) []entities.CombatParticipant {
	active := make([]entities.CombatParticipant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// TurnAdvance is the computed next turn position.
type TurnAdvance struct {
	Index    int32
	Round    int32
	NewRound bool
}

// AdvanceTurn computes the position after the current turn ends. Walking
// past the last active participant rolls over to the next round at index 0;
// the caller runs condition expiry for the new round when that happens.
func AdvanceTurn(currentIndex, round int32, activeCount int) TurnAdvance {
	next := currentIndex + 1
	if int(next) >= activeCount {
		return TurnAdvance{Index: 0, Round: round + 1, NewRound: true}
	}
	return TurnAdvance{Index: next, Round: round}
}
