package entities

import "github.com/greyhelm/vtt-api/internal/errors"

// ActorKind distinguishes the template an actor was instantiated from.
type ActorKind string

// Actor kinds
const (
	ActorKindCharacter ActorKind = "character"
	ActorKindMonster   ActorKind = "monster"
)

// ActorSource is the tagged union behind the nullable character/monster
// column pair. Construct it with NewActorSource so the "exactly one"
// invariant holds from creation, not just at validation.
type ActorSource struct {
	kind ActorKind
	id   string
}

// NewActorSource builds an ActorSource from the nullable column pair.
// Exactly one of characterID / monsterID must be set.
func NewActorSource(characterID, monsterID string) (ActorSource, error) {
	switch {
	case characterID != "" && monsterID != "":
		return ActorSource{}, errors.InvalidArgument("actor must reference either a character or a monster, not both")
	case characterID != "":
		return ActorSource{kind: ActorKindCharacter, id: characterID}, nil
	case monsterID != "":
		return ActorSource{kind: ActorKindMonster, id: monsterID}, nil
	default:
		return ActorSource{}, errors.InvalidArgument("actor must reference either a character or a monster")
	}
}

// Kind returns which template kind the source points at.
func (s ActorSource) Kind() ActorKind { return s.kind }

// ID returns the template id.
func (s ActorSource) ID() string { return s.id }

// IsCharacter reports whether the source is a character template.
func (s ActorSource) IsCharacter() bool { return s.kind == ActorKindCharacter }

// Concentration is the resources entry a caster holds while concentrating
// on a spell. Casting another concentration spell silently replaces it.
type Concentration struct {
	SpellID   string `json:"spell_id"`
	StartedAt string `json:"started_at"`
}

// ActorInGame is a live instance of a character or monster template scoped
// to one game. HP, consciousness, and death-save fields are mutated only
// through the resource engine paths so their invariants hold.
type ActorInGame struct {
	ID              string `json:"id"`
	GameID          string `json:"game_id"`
	BaseCharacterID string `json:"base_character_id,omitempty"`
	BaseMonsterID   string `json:"base_monster_id,omitempty"`
	NameOverride    string `json:"name_override,omitempty"`

	CurrentHP     int32 `json:"current_hp"`
	TempHP        int32 `json:"temp_hp"`
	MaxHPOverride int32 `json:"max_hp_override,omitempty"`
	ArmorClass    int32 `json:"armor_class"`

	// Constitution is snapshotted from the template at spawn time; the
	// concentration check derives its modifier from it.
	Constitution int32 `json:"constitution"`

	DeathSavesSuccess int32 `json:"death_saves_success"`
	DeathSavesFail    int32 `json:"death_saves_fail"`
	IsConscious       bool  `json:"is_conscious"`
	IsStable          bool  `json:"is_stable"`

	// Resources is a free-form bag; the "concentration" key is the one the
	// engine cares about.
	Resources map[string]any `json:"resources,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Source reconstructs the tagged union from the stored column pair.
func (a *ActorInGame) Source() (ActorSource, error) {
	return NewActorSource(a.BaseCharacterID, a.BaseMonsterID)
}

// Concentration returns the active concentration entry, or nil.
func (a *ActorInGame) Concentration() *Concentration {
	if a.Resources == nil {
		return nil
	}
	raw, ok := a.Resources["concentration"]
	if !ok {
		return nil
	}

	// The bag round-trips through JSON, so the entry may be a map.
	switch v := raw.(type) {
	case Concentration:
		return &v
	case *Concentration:
		return v
	case map[string]any:
		c := &Concentration{}
		if s, ok := v["spell_id"].(string); ok {
			c.SpellID = s
		}
		if s, ok := v["started_at"].(string); ok {
			c.StartedAt = s
		}
		return c
	default:
		return nil
	}
}

// SetConcentration stamps a concentration entry, replacing any prior one.
func (a *ActorInGame) SetConcentration(c Concentration) {
	if a.Resources == nil {
		a.Resources = make(map[string]any)
	}
	a.Resources["concentration"] = c
}

// ClearConcentration removes the concentration entry if present.
func (a *ActorInGame) ClearConcentration() {
	delete(a.Resources, "concentration")
}

// IsDead reports the death-save terminal state.
func (a *ActorInGame) IsDead() bool {
	return a.DeathSavesFail >= 3
}

// SpellSlot tracks per-level spell slot usage for an actor.
type SpellSlot struct {
	ActorInGameID string `json:"actor_in_game_id"`
	Level         int32  `json:"level"`
	SlotsMax      int32  `json:"slots_max"`
	SlotsUsed     int32  `json:"slots_used"`
}
