package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
)

func actor(hp, tempHP int32) *entities.ActorInGame {
	return &entities.ActorInGame{
		ID:          "actor_1",
		GameID:      "game_1",
		CurrentHP:   hp,
		TempHP:      tempHP,
		IsConscious: hp > 0,
		IsStable:    true,
	}
}

func TestApplyHPDeltaAbsorption(t *testing.T) {
	tests := []struct {
		name       string
		hp, tempHP int32
		delta      int32
		wantHP     int32
		wantTemp   int32
		wantAbsorb int32
	}{
		{"temp absorbs all", 10, 5, -3, 10, 2, 3},
		{"temp absorbs partially", 10, 5, -8, 7, 0, 5},
		{"no temp hp", 10, 0, -4, 6, 0, 0},
		{"clamped at zero", 3, 0, -9, 0, 0, 0},
		{"healing ignores temp", 5, 2, 4, 9, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := actor(tt.hp, tt.tempHP)
			change := engine.ApplyHPDelta(a, tt.delta)

			assert.Equal(t, tt.wantHP, a.CurrentHP)
			assert.Equal(t, tt.wantTemp, a.TempHP)
			assert.Equal(t, tt.wantAbsorb, change.Absorbed)
		})
	}
}

func TestApplyHPDeltaDropsUnconscious(t *testing.T) {
	a := actor(4, 0)
	change := engine.ApplyHPDelta(a, -4)

	assert.True(t, change.WentUnconscious)
	assert.False(t, a.IsConscious)
	assert.False(t, a.IsStable)
	assert.False(t, change.DeathSaveFailAdded)
}

func TestApplyHPDeltaDamageWhileDown(t *testing.T) {
	a := actor(0, 0)
	a.IsConscious = false
	a.IsStable = false
	a.DeathSavesFail = 1

	change := engine.ApplyHPDelta(a, -5)

	assert.True(t, change.DeathSaveFailAdded)
	assert.False(t, change.WentUnconscious)
	assert.Equal(t, int32(2), a.DeathSavesFail)
	assert.Equal(t, int32(0), a.CurrentHP)
}

func TestApplyHPDeltaHealingResets(t *testing.T) {
	a := actor(0, 0)
	a.IsConscious = false
	a.IsStable = false
	a.DeathSavesSuccess = 2
	a.DeathSavesFail = 2

	change := engine.ApplyHPDelta(a, 6)

	assert.True(t, change.Recovered)
	assert.True(t, a.IsConscious)
	assert.True(t, a.IsStable)
	assert.Equal(t, int32(0), a.DeathSavesSuccess)
	assert.Equal(t, int32(0), a.DeathSavesFail)
	assert.Equal(t, int32(6), a.CurrentHP)
}

func TestApplyHPDeltaZeroDeltaWhileDownIsNoFailure(t *testing.T) {
	a := actor(0, 0)
	a.IsConscious = false
	a.IsStable = true

	change := engine.ApplyHPDelta(a, 0)

	assert.False(t, change.DeathSaveFailAdded)
	assert.Equal(t, int32(0), a.DeathSavesFail)
}
