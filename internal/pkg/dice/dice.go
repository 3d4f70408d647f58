// Package dice implements the roll mechanics used by combat resolution:
// d20 rolls with advantage and disadvantage, damage formula evaluation,
// and saving throws. All randomness flows through the Roller interface so
// outcomes are deterministic under test.
package dice

import (
	"math/rand/v2"
	"regexp"
	"strconv"
)

// RollMode selects how a d20 is drawn.
type RollMode string

// Roll modes
const (
	ModeNormal       RollMode = "normal"
	ModeAdvantage    RollMode = "advantage"
	ModeDisadvantage RollMode = "disadvantage"
)

// ResolveRollMode collapses advantage/disadvantage flags into a RollMode.
// Requesting both cancels out to a normal roll.
func ResolveRollMode(advantage, disadvantage bool) RollMode {
	if advantage && !disadvantage {
		return ModeAdvantage
	}
	if disadvantage && !advantage {
		return ModeDisadvantage
	}
	return ModeNormal
}

// Roller produces uniform random die faces in [1, sides].
type Roller interface {
	Roll(sides int) int
}

type randRoller struct{}

func (randRoller) Roll(sides int) int {
	return rand.IntN(sides) + 1
}

// NewRoller returns the production Roller backed by math/rand/v2.
func NewRoller() Roller {
	return randRoller{}
}

// Sequence is a scripted Roller for tests. It returns the configured
// values in order, wrapping around when exhausted.
type Sequence struct {
	values []int
	next   int
}

// NewSequence creates a Roller that yields the given values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// Roll returns the next scripted value regardless of sides.
func (s *Sequence) Roll(_ int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// D20Roll is the outcome of a d20 roll under a given mode. Natural is the
// selected face value before any modifier; crit detection reads it.
type D20Roll struct {
	Natural int
	Rolls   []int
	Mode    RollMode
}

// RollD20 rolls a d20 under the given mode. Advantage and disadvantage
// draw twice and keep max or min respectively.
func RollD20(r Roller, mode RollMode) D20Roll {
	r1 := r.Roll(20)
	if mode == ModeNormal {
		return D20Roll{Natural: r1, Rolls: []int{r1}, Mode: mode}
	}

	r2 := r.Roll(20)
	natural := max(r1, r2)
	if mode == ModeDisadvantage {
		natural = min(r1, r2)
	}
	return D20Roll{Natural: natural, Rolls: []int{r1, r2}, Mode: mode}
}

// Matches "NdM" with an optional "+K" anywhere in the formula, mirroring
// the leniency of the original parser.
var damageFormulaRegex = regexp.MustCompile(`(\d+)d(\d+)(?:\s*\+\s*(\d+))?`)

// RollDamage evaluates a damage formula like "2d6+3": N independent draws
// in [1,M] plus the flat bonus. A formula that does not parse yields 0
// damage rather than an error.
func RollDamage(r Roller, formula string) int {
	parts := damageFormulaRegex.FindStringSubmatch(formula)
	if parts == nil {
		return 0
	}

	rolls, _ := strconv.Atoi(parts[1])
	die, _ := strconv.Atoi(parts[2])
	bonus := 0
	if parts[3] != "" {
		bonus, _ = strconv.Atoi(parts[3])
	}

	total := bonus
	for i := 0; i < rolls; i++ {
		total += r.Roll(die)
	}
	return total
}

// SavingThrowInput describes a saving throw to roll.
type SavingThrowInput struct {
	DC       int
	Modifier int
	Ability  string
	Mode     RollMode
}

// SavingThrowResult reports a resolved saving throw.
type SavingThrowResult struct {
	Roll     int      `json:"roll"`
	Modifier int      `json:"modifier"`
	Total    int      `json:"total"`
	DC       int      `json:"dc"`
	Success  bool     `json:"success"`
	Ability  string   `json:"ability,omitempty"`
	Mode     RollMode `json:"roll_mode"`
}

// RollSavingThrow rolls a d20 under the given mode, adds the modifier, and
// succeeds when the total meets or beats the DC.
func RollSavingThrow(r Roller, input SavingThrowInput) SavingThrowResult {
	roll := RollD20(r, input.Mode)
	total := roll.Natural + input.Modifier

	return SavingThrowResult{
		Roll:     roll.Natural,
		Modifier: input.Modifier,
		Total:    total,
		DC:       input.DC,
		Success:  total >= input.DC,
		Ability:  input.Ability,
		Mode:     input.Mode,
	}
}
