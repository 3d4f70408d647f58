package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
)

func TestResolveDeathSave(t *testing.T) {
	tests := []struct {
		name           string
		natural        int32
		priorSuccesses int32
		priorFailures  int32
		want           engine.DeathSaveOutcome
	}{
		{
			name:    "natural 20 stabilizes",
			natural: 20, priorSuccesses: 1, priorFailures: 2,
			want: engine.DeathSaveOutcome{Roll: 20, Successes: 3, Failures: 2, IsStable: true},
		},
		{
			name:    "natural 1 counts double",
			natural: 1, priorSuccesses: 0, priorFailures: 0,
			want: engine.DeathSaveOutcome{Roll: 1, Successes: 0, Failures: 2},
		},
		{
			name:    "ten or better succeeds",
			natural: 10, priorSuccesses: 1, priorFailures: 1,
			want: engine.DeathSaveOutcome{Roll: 10, Successes: 2, Failures: 1},
		},
		{
			name:    "below ten fails",
			natural: 3, priorSuccesses: 0, priorFailures: 1,
			want: engine.DeathSaveOutcome{Roll: 3, Successes: 0, Failures: 2},
		},
		{
			name:    "third failure is death",
			natural: 4, priorSuccesses: 0, priorFailures: 2,
			want: engine.DeathSaveOutcome{Roll: 4, Successes: 0, Failures: 3, IsDead: true},
		},
		{
			name:    "natural 1 at two failures is death",
			natural: 1, priorSuccesses: 0, priorFailures: 2,
			want: engine.DeathSaveOutcome{Roll: 1, Successes: 0, Failures: 4, IsDead: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ResolveDeathSave(tt.natural, tt.priorSuccesses, tt.priorFailures)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbilityModifier(t *testing.T) {
	tests := []struct {
		score int32
		want  int32
	}{
		{20, 5}, {14, 2}, {11, 0}, {10, 0}, {9, -1}, {8, -1}, {7, -2}, {3, -4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.AbilityModifier(tt.score), "score %d", tt.score)
	}
}

func TestConcentrationDC(t *testing.T) {
	assert.Equal(t, int32(10), engine.ConcentrationDC(10), "minimum DC is 10")
	assert.Equal(t, int32(10), engine.ConcentrationDC(0))
	assert.Equal(t, int32(11), engine.ConcentrationDC(22))
	assert.Equal(t, int32(10), engine.ConcentrationDC(21), "half damage rounds down")
}

func participant(id string, initiative int32) entities.CombatParticipant {
	return entities.CombatParticipant{
		ID:            id,
		ActorInGameID: "actor_" + id,
		Initiative:    initiative,
		IsActive:      true,
		IsConscious:   true,
	}
}

func TestReorderDescendingInitiative(t *testing.T) {
	parts := []entities.CombatParticipant{
		participant("a", 10),
		participant("b", 20),
		participant("c", 15),
	}

	engine.Reorder(parts)

	assert.Equal(t, "b", parts[0].ID)
	assert.Equal(t, "c", parts[1].ID)
	assert.Equal(t, "a", parts[2].ID)
	for i, p := range parts {
		assert.Equal(t, int32(i), p.TurnOrder)
	}
}

func TestReorderStableOnTies(t *testing.T) {
	parts := []entities.CombatParticipant{
		participant("first", 12),
		participant("second", 12),
		participant("third", 12),
	}

	engine.Reorder(parts)

	assert.Equal(t, "first", parts[0].ID)
	assert.Equal(t, "second", parts[1].ID)
	assert.Equal(t, "third", parts[2].ID)
}

func TestAdvanceTurnWithinRound(t *testing.T) {
	adv := engine.AdvanceTurn(0, 1, 3)

	assert.Equal(t, int32(1), adv.Index)
	assert.Equal(t, int32(1), adv.Round)
	assert.False(t, adv.NewRound)
}

func TestAdvanceTurnRollsOverRound(t *testing.T) {
	adv := engine.AdvanceTurn(2, 1, 3)

	assert.Equal(t, int32(0), adv.Index)
	assert.Equal(t, int32(2), adv.Round)
	assert.True(t, adv.NewRound)
}

func TestActiveParticipants(t *testing.T) {
	parts := []entities.CombatParticipant{
		participant("a", 20),
		participant("b", 15),
		participant("c", 10),
	}
	parts[1].IsActive = false

	active := engine.ActiveParticipants(parts)

	assert.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "c", active[1].ID)
}
