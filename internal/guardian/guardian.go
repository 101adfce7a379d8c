// Package guardian runs the guardian's turn loop: choose a goal, plan for
// it, act on the first step of the plan and let the world move on.
package guardian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"github.com/tatianab/dungeon-guardian/internal/narrator"
	"github.com/tatianab/dungeon-guardian/internal/planner"
	"go.uber.org/zap"
)

// DefaultMaxSteps is used when a simulation is given no step budget.
const DefaultMaxSteps = 15

// Environment carries out actions and evolves the world between turns.
type Environment interface {
	Execute(a catalog.Action, s models.WorldState) (bool, string, models.WorldState)
	Drift(s models.WorldState) models.WorldState
}

// Narrator describes what the guardian is doing.
type Narrator interface {
	DescribeGoal(ctx context.Context, s models.WorldState, g goals.Goal) string
	DescribeAction(ctx context.Context, s models.WorldState, id catalog.ActionID) string
	ReflectOnFailure(ctx context.Context, s models.WorldState, id catalog.ActionID, reason string, step int, mem *narrator.Memory) string
}

// Outcome is how a run ended, or OutcomeRunning while it has not.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeStable
	OutcomeDefeat
	OutcomeNoPlan
	OutcomeStepLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeStable:
		return "stable"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeNoPlan:
		return "no plan"
	case OutcomeStepLimit:
		return "step limit"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Terminal reports whether the run is over.
func (o Outcome) Terminal() bool { return o != OutcomeRunning }

// Step records one turn.
type Step struct {
	Number     int
	Goal       goals.Goal
	GoalText   string
	Plan       []catalog.ActionID
	Action     catalog.ActionID // empty when nothing was executed
	ActionText string
	Success    bool
	Message    string
	Reflection string
	Before     models.WorldState
	After      models.WorldState // after execution and drift
	Outcome    Outcome
}

// Report summarises a finished run.
type Report struct {
	RunID   string
	Initial models.WorldState
	Final   models.WorldState
	Outcome Outcome
	Steps   []Step
	Memory  []narrator.Entry
}

// Deps are the collaborators a simulation needs. Logger may be nil.
type Deps struct {
	Catalog  *catalog.Catalog
	Selector *goals.Selector
	Planner  *planner.Planner
	Env      Environment
	Narrator Narrator
	Logger   *zap.Logger
}

// Simulation is one guardian's run. It is not safe for concurrent use.
type Simulation struct {
	deps     Deps
	id       string
	initial  models.WorldState
	state    models.WorldState
	maxSteps int
	steps    []Step
	memory   *narrator.Memory
	outcome  Outcome
	logger   *zap.Logger
}

func New(deps Deps, initial models.WorldState, maxSteps int) *Simulation {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	id := uuid.NewString()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulation{
		deps:     deps,
		id:       id,
		initial:  initial,
		state:    initial,
		maxSteps: maxSteps,
		memory:   narrator.NewMemory(),
		logger:   logger.With(zap.String("run_id", id)),
	}
}

func (s *Simulation) ID() string { return s.id }
func (s *Simulation) State() models.WorldState { return s.state }
func (s *Simulation) Outcome() Outcome { return s.outcome }
func (s *Simulation) MaxSteps() int { return s.maxSteps }
func (s *Simulation) Steps() []Step { return append([]Step(nil), s.steps...) }
func (s *Simulation) Memory() *narrator.Memory { return s.memory }

// Factory builds a simulation for a scenario.
type Factory func(sc models.Scenario) (*Simulation, error)

// Step plays one turn. It returns false once the run has ended, in which
// case the returned Step is the zero value.
func (s *Simulation) Step(ctx context.Context) (Step, bool) {
	if s.outcome.Terminal() {
		return Step{}, false
	}

	st := Step{Number: len(s.steps) + 1, Before: s.state}
	goal := s.deps.Selector.Select(s.state)
	predicate := s.deps.Selector.Predicate(goal)
	st.Goal = goal
	st.GoalText = s.deps.Narrator.DescribeGoal(ctx, s.state, goal)

	res := s.deps.Planner.Search(s.state, predicate)
	st.Plan = res.Actions
	log := s.logger.With(zap.Int("step", st.Number), zap.Stringer("goal", goal))

	if !res.Found {
		log.Info("No plan found",
			zap.Int("expanded", res.Expanded),
			zap.Bool("bound_reached", res.Exhausted))
		st.After = s.state
		return s.finish(st, OutcomeNoPlan), true
	}

	if len(res.Actions) > 0 {
		s.execute(ctx, &st, res.Actions[0], log)
	} else {
		log.Debug("Goal already satisfied")
	}

	s.state = s.deps.Env.Drift(s.state)
	st.After = s.state

	outcome := OutcomeRunning
	switch {
	case s.state.Defeated():
		outcome = OutcomeDefeat
	case s.state.Stable():
		outcome = OutcomeStable
	case st.Number >= s.maxSteps:
		outcome = OutcomeStepLimit
	}
	log.Info("Step complete",
		zap.String("action", string(st.Action)),
		zap.Bool("success", st.Success),
		zap.Stringer("state", s.state),
		zap.Stringer("outcome", outcome))
	return s.finish(st, outcome), true
}

func (s *Simulation) execute(ctx context.Context, st *Step, id catalog.ActionID, log *zap.Logger) {
	action, ok := s.deps.Catalog.Action(id)
	if !ok {
		// The planner only returns ids from the catalog it was built with.
		log.Error("Planned action missing from catalog", zap.String("action", string(id)))
		return
	}
	st.Action = id
	st.ActionText = s.deps.Narrator.DescribeAction(ctx, s.state, id)

	success, msg, next := s.deps.Env.Execute(action, s.state)
	st.Success = success
	st.Message = msg
	if success {
		s.state = next
		return
	}
	st.Reflection = s.deps.Narrator.ReflectOnFailure(ctx, s.state, id, msg, st.Number, s.memory)
	log.Info("Action failed", zap.String("action", string(id)), zap.String("reason", msg))
}

func (s *Simulation) finish(st Step, outcome Outcome) Step {
	st.Outcome = outcome
	s.outcome = outcome
	s.steps = append(s.steps, st)
	return st
}

// Run plays turns until the run ends or ctx is cancelled. The report is
// returned in both cases.
func (s *Simulation) Run(ctx context.Context) (Report, error) {
	s.logger.Info("Simulation started", zap.Stringer("state", s.initial), zap.Int("max_steps", s.maxSteps))
	for !s.outcome.Terminal() {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Simulation cancelled", zap.Int("steps", len(s.steps)))
			return s.Report(), err
		}
		s.Step(ctx)
	}
	s.logger.Info("Simulation finished", zap.Stringer("outcome", s.outcome), zap.Int("steps", len(s.steps)))
	return s.Report(), nil
}

// Report snapshots the run so far.
func (s *Simulation) Report() Report {
	return Report{
		RunID:   s.id,
		Initial: s.initial,
		Final:   s.state,
		Outcome: s.outcome,
		Steps:   s.Steps(),
		Memory:  s.memory.Entries(),
	}
}
