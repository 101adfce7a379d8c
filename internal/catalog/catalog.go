// Package catalog holds the actions available to the guardian and the
// condition and effect building blocks they are made of.
package catalog

import (
	"errors"
	"fmt"

	"github.com/tatianab/dungeon-guardian/internal/models"
)

// ErrMalformed is wrapped by every DefinitionError.
var ErrMalformed = errors.New("malformed definition")

// DefinitionError reports an action or goal definition that cannot be used.
type DefinitionError struct {
	Subject string
	Reason  string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return ErrMalformed }

// Catalog is a validated, ordered set of actions.
type Catalog struct {
	actions []Action
	byID    map[ActionID]int
}

// NewCatalog validates actions and keeps them in the given order, which is
// also the order the planner expands them in.
func NewCatalog(actions ...Action) (*Catalog, error) {
	if len(actions) == 0 {
		return nil, &DefinitionError{Subject: "catalog", Reason: "no actions"}
	}
	c := &Catalog{
		actions: make([]Action, 0, len(actions)),
		byID:    make(map[ActionID]int, len(actions)),
	}
	for i, a := range actions {
		if err := validateAction(a); err != nil {
			return nil, err
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, &DefinitionError{Subject: fmt.Sprintf("action %q", a.ID), Reason: "duplicate id"}
		}
		c.byID[a.ID] = i
		c.actions = append(c.actions, a)
	}
	return c, nil
}

func validateAction(a Action) error {
	subject := fmt.Sprintf("action %q", a.ID)
	if a.ID == "" {
		return &DefinitionError{Subject: "action", Reason: "empty id"}
	}
	if a.Cost < 1 {
		return &DefinitionError{Subject: subject, Reason: fmt.Sprintf("cost %d is below 1", a.Cost)}
	}
	if len(a.Effects) == 0 {
		return &DefinitionError{Subject: subject, Reason: "no effects"}
	}
	for i, c := range a.Preconditions {
		if err := c.validate(); err != nil {
			return &DefinitionError{Subject: subject, Reason: fmt.Sprintf("precondition %d: %v", i, err)}
		}
	}
	seen := make(map[Field]bool, len(a.Effects))
	for i, e := range a.Effects {
		if err := e.validate(); err != nil {
			return &DefinitionError{Subject: subject, Reason: fmt.Sprintf("effect %d: %v", i, err)}
		}
		if seen[e.field] {
			return &DefinitionError{Subject: subject, Reason: fmt.Sprintf("effect %d: %s written twice", i, e.field)}
		}
		seen[e.field] = true
	}
	return nil
}

// ValidateConditions checks a goal predicate the same way NewCatalog checks
// preconditions.
func ValidateConditions(subject string, cs Conditions) error {
	if len(cs) == 0 {
		return &DefinitionError{Subject: subject, Reason: "no conditions"}
	}
	for i, c := range cs {
		if err := c.validate(); err != nil {
			return &DefinitionError{Subject: subject, Reason: fmt.Sprintf("condition %d: %v", i, err)}
		}
	}
	return nil
}

// Actions returns the actions in catalog order.
func (c *Catalog) Actions() []Action {
	return append([]Action(nil), c.actions...)
}

// Len returns the number of actions.
func (c *Catalog) Len() int { return len(c.actions) }

// Action looks up an action by id.
func (c *Catalog) Action(id ActionID) (Action, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Action{}, false
	}
	return c.actions[i], true
}

// Applicable returns the actions whose preconditions hold for s, in catalog
// order.
func (c *Catalog) Applicable(s models.WorldState) []Action {
	var out []Action
	for _, a := range c.actions {
		if a.Applicable(s) {
			out = append(out, a)
		}
	}
	return out
}
