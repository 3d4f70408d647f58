package entities

// AttackType selects the resolution mechanic for a spell.
type AttackType string

// Attack types
const (
	AttackTypeAttack AttackType = "attack"
	AttackTypeSave   AttackType = "save"
)

// ConditionTrigger tags when a conditional effect applies.
type ConditionTrigger string

// Condition triggers
const (
	TriggerHit      ConditionTrigger = "hit"
	TriggerFailSave ConditionTrigger = "fail_save"
	TriggerAlways   ConditionTrigger = "always"
)

// SaveRequirement is a per-effect saving throw the target must fail for
// the condition to stick.
type SaveRequirement struct {
	Ability string `json:"ability"`
	DC      int32  `json:"dc"`
}

// ConditionEffect is a conditional condition application linked to an
// attack or spell definition.
type ConditionEffect struct {
	ConditionID    string           `json:"condition_id"`
	On             ConditionTrigger `json:"on"`
	DurationRounds *int32           `json:"duration_rounds,omitempty"`
	RequiresSave   *SaveRequirement `json:"requires_save,omitempty"`
}

// Condition is a catalog entry (poisoned, stunned, ...).
type Condition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Attack is a catalog attack definition.
type Attack struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	DamageFormula string            `json:"damage_formula,omitempty"`
	Conditions    []ConditionEffect `json:"conditions,omitempty"`
}

// Spell is a catalog spell definition.
type Spell struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Level           int32             `json:"level"`
	AttackType      AttackType        `json:"attack_type,omitempty"`
	SaveAbility     string            `json:"save_ability,omitempty"`
	DamageFormula   string            `json:"damage_formula,omitempty"`
	IsConcentration bool              `json:"is_concentration"`
	Conditions      []ConditionEffect `json:"conditions,omitempty"`
}
