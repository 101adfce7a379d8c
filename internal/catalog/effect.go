package catalog

import (
	"fmt"
	"math/rand/v2"
)

type effectKind int

const (
	effectInvalid effectKind = iota
	effectLiteral
	effectTransform
	effectRoll
)

// Effect changes one field of a world state. It is either a literal
// assignment, a deterministic transform of the field's pre-effect value, or a
// roll: a transform with a fixed estimate for planning and a random form for
// execution.
type Effect struct {
	kind  effectKind
	field Field
	value Value
	label string
	fn    func(Value) Value
	roll  func(Value, *rand.Rand) Value
}

// Set assigns v to f.
func Set(f Field, v Value) Effect {
	return Effect{kind: effectLiteral, field: f, value: v}
}

// Apply replaces f with fn(previous value).
func Apply(f Field, label string, fn func(Value) Value) Effect {
	return Effect{kind: effectTransform, field: f, label: label, fn: fn}
}

// Roll is like Apply, but Perform draws the new value with roll. The planner
// only ever sees estimate, so search stays reproducible.
func Roll(f Field, label string, estimate func(Value) Value, roll func(Value, *rand.Rand) Value) Effect {
	return Effect{kind: effectRoll, field: f, label: label, fn: estimate, roll: roll}
}

// Add changes f by delta without going below zero or above limit (limit < 0
// is unbounded).
func Add(f Field, delta, limit int) Effect {
	label := fmt.Sprintf("+= %d", delta)
	if delta < 0 {
		label = fmt.Sprintf("-= %d", -delta)
	}
	return Apply(f, label, func(v Value) Value { return Value(clamp(int(v)+delta, 0, limit)) })
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if hi >= 0 && n > hi {
		return hi
	}
	return n
}

// Field returns the field the effect writes.
func (e Effect) Field() Field { return e.field }

// Random reports whether execution may differ from planning.
func (e Effect) Random() bool { return e.kind == effectRoll }

func (e Effect) plan(cur Value) Value {
	if e.kind == effectLiteral {
		return e.value
	}
	return e.fn(cur)
}

func (e Effect) perform(cur Value, rng *rand.Rand) Value {
	if e.kind == effectRoll && rng != nil {
		return e.roll(cur, rng)
	}
	return e.plan(cur)
}

func (e Effect) String() string {
	switch e.kind {
	case effectLiteral:
		return fmt.Sprintf("%s = %s", e.field, e.field.Format(e.value))
	case effectTransform:
		return fmt.Sprintf("%s %s", e.field, e.label)
	case effectRoll:
		return fmt.Sprintf("%s %s (random)", e.field, e.label)
	}
	return "<invalid effect>"
}

func (e Effect) validate() error {
	if e.kind == effectInvalid {
		return fmt.Errorf("effect is neither literal nor transform")
	}
	if !e.field.Valid() {
		return fmt.Errorf("unknown field %d", int(e.field))
	}
	switch e.kind {
	case effectLiteral:
		if !e.field.Accepts(e.value) {
			return fmt.Errorf("literal %d out of range for %s (%s)", int(e.value), e.field, e.field.Kind())
		}
	case effectTransform:
		if e.fn == nil {
			return fmt.Errorf("transform on %s has no function", e.field)
		}
	case effectRoll:
		if e.fn == nil || e.roll == nil {
			return fmt.Errorf("roll on %s needs both an estimate and a roll", e.field)
		}
	}
	return nil
}
