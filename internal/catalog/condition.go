package catalog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

type conditionKind int

const (
	conditionInvalid conditionKind = iota
	conditionLiteral
	conditionPredicate
	conditionExpr
)

// Condition is a single requirement on a world state. It is either a literal
// equality on one field, a predicate over one field's value, or a compiled
// expression over the whole state.
type Condition struct {
	kind    conditionKind
	field   Field
	value   Value
	label   string
	pred    func(Value) bool
	program *vm.Program
}

// Is requires f to equal v.
func Is(f Field, v Value) Condition {
	return Condition{kind: conditionLiteral, field: f, value: v}
}

// Where requires pred to hold for the value of f. The label is used when
// the condition is printed, e.g. ">= 5".
func Where(f Field, label string, pred func(Value) bool) Condition {
	return Condition{kind: conditionPredicate, field: f, label: label, pred: pred}
}

// AtLeast requires f >= n.
func AtLeast(f Field, n int) Condition {
	return Where(f, fmt.Sprintf(">= %d", n), func(v Value) bool { return int(v) >= n })
}

// Below requires f < n.
func Below(f Field, n int) Condition {
	return Where(f, fmt.Sprintf("< %d", n), func(v Value) bool { return int(v) < n })
}

// OneOf requires f to hold one of vs.
func OneOf(f Field, vs ...Value) Condition {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = f.Format(v)
	}
	set := append([]Value(nil), vs...)
	return Where(f, "in {"+strings.Join(names, ",")+"}", func(v Value) bool {
		for _, want := range set {
			if v == want {
				return true
			}
		}
		return false
	})
}

// Expr compiles a boolean expression over the state's fields, for example
// `health >= 60 && isInSafeZone` or `treasureThreatLevel == "low"`.
// Unknown identifiers and non-boolean expressions are rejected here rather
// than at evaluation time.
func Expr(source string) (Condition, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv(models.WorldState{})), expr.AsBool())
	if err != nil {
		return Condition{}, &DefinitionError{Subject: fmt.Sprintf("expression %q", source), Reason: err.Error()}
	}
	return Condition{kind: conditionExpr, label: source, program: program}, nil
}

func exprEnv(s models.WorldState) map[string]any {
	env := make(map[string]any, numFields)
	for _, f := range Fields() {
		v := f.Get(s)
		switch f.Kind() {
		case KindBool:
			env[f.String()] = v.Bool()
		case KindThreat:
			env[f.String()] = v.Threat().String()
		default:
			env[f.String()] = int(v)
		}
	}
	return env
}

// Holds evaluates the condition against s. An expression that fails at run
// time does not hold.
func (c Condition) Holds(s models.WorldState) bool {
	switch c.kind {
	case conditionLiteral:
		return c.field.Get(s) == c.value
	case conditionPredicate:
		return c.pred(c.field.Get(s))
	case conditionExpr:
		out, err := expr.Run(c.program, exprEnv(s))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
	return false
}

func (c Condition) String() string {
	switch c.kind {
	case conditionLiteral:
		return fmt.Sprintf("%s == %s", c.field, c.field.Format(c.value))
	case conditionPredicate:
		return fmt.Sprintf("%s %s", c.field, c.label)
	case conditionExpr:
		return c.label
	}
	return "<invalid condition>"
}

func (c Condition) validate() error {
	switch c.kind {
	case conditionLiteral:
		if !c.field.Valid() {
			return fmt.Errorf("unknown field %d", int(c.field))
		}
		if !c.field.Accepts(c.value) {
			return fmt.Errorf("literal %d out of range for %s (%s)", int(c.value), c.field, c.field.Kind())
		}
	case conditionPredicate:
		if !c.field.Valid() {
			return fmt.Errorf("unknown field %d", int(c.field))
		}
		if c.pred == nil {
			return fmt.Errorf("predicate on %s has no function", c.field)
		}
	case conditionExpr:
		if c.program == nil {
			return fmt.Errorf("expression %q was not compiled", c.label)
		}
	default:
		return fmt.Errorf("condition is neither literal nor predicate")
	}
	return nil
}

// Conditions is a conjunction.
type Conditions []Condition

// Satisfied reports whether every condition holds for s.
func (cs Conditions) Satisfied(s models.WorldState) bool {
	for _, c := range cs {
		if !c.Holds(s) {
			return false
		}
	}
	return true
}

// Unsatisfied counts the conditions that do not hold for s.
func (cs Conditions) Unsatisfied(s models.WorldState) int {
	n := 0
	for _, c := range cs {
		if !c.Holds(s) {
			n++
		}
	}
	return n
}

func (cs Conditions) String() string {
	if len(cs) == 0 {
		return "true"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " && ")
}
