package httpapi

import (
	"net/http"

	"github.com/greyhelm/vtt-api/internal/orchestrators/attack"
	"github.com/greyhelm/vtt-api/internal/orchestrators/spellcasting"
)

func (h *Handler) handleResolveAttack(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		AttackerID   string `json:"attacker_id"`
		TargetID     string `json:"target_id"`
		AttackID     string `json:"attack_id"`
		Advantage    bool   `json:"advantage"`
		Disadvantage bool   `json:"disadvantage"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.attackService.ResolveAttack(r.Context(), &attack.ResolveAttackInput{
		GameID:       r.PathValue("gameID"),
		UserID:       uid,
		AttackerID:   body.AttackerID,
		TargetID:     body.TargetID,
		AttackID:     body.AttackID,
		Advantage:    body.Advantage,
		Disadvantage: body.Disadvantage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roll":                 out.Roll,
		"hit":                  out.Hit,
		"critical":             out.Critical,
		"damage":               out.Damage,
		"target":               out.Target,
		"conditions_applied":   out.ConditionsApplied,
		"concentration_broken": out.ConcentrationBroken,
	})
}

func (h *Handler) handleCastSpell(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		CasterID     string   `json:"caster_id"`
		SpellID      string   `json:"spell_id"`
		Level        int32    `json:"level"`
		TargetIDs    []string `json:"target_actor_ids"`
		Advantage    bool     `json:"advantage"`
		Disadvantage bool     `json:"disadvantage"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.spellService.CastSpell(r.Context(), &spellcasting.CastSpellInput{
		GameID:       r.PathValue("gameID"),
		UserID:       uid,
		CasterID:     body.CasterID,
		SpellID:      body.SpellID,
		Level:        body.Level,
		TargetIDs:    body.TargetIDs,
		Advantage:    body.Advantage,
		Disadvantage: body.Disadvantage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"spell":     out.Spell,
		"slot":      out.Slot,
		"roll_mode": out.RollMode,
		"targets":   out.Targets,
	})
}
