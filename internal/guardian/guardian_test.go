package guardian

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/engine"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"github.com/tatianab/dungeon-guardian/internal/narrator"
	"github.com/tatianab/dungeon-guardian/internal/planner"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedEnv applies actions deterministically and drifts with a hook.
type scriptedEnv struct {
	fail     bool
	drift    func(models.WorldState) models.WorldState
	executed []catalog.ActionID
}

func (e *scriptedEnv) Execute(a catalog.Action, s models.WorldState) (bool, string, models.WorldState) {
	e.executed = append(e.executed, a.ID)
	if e.fail {
		return false, "it went wrong", s
	}
	return true, "done", a.Apply(s)
}

func (e *scriptedEnv) Drift(s models.WorldState) models.WorldState {
	if e.drift == nil {
		return s
	}
	return e.drift(s)
}

func newDeps(t *testing.T, env Environment) Deps {
	t.Helper()
	cat, err := catalog.Default(catalog.DefaultPlanningDamage)
	require.NoError(t, err)
	sel, err := goals.NewSelector(nil)
	require.NoError(t, err)
	return Deps{
		Catalog:  cat,
		Selector: sel,
		Planner:  planner.New(cat),
		Env:      env,
		Narrator: narrator.NewTemplate(),
		Logger:   zaptest.NewLogger(t),
	}
}

func TestRunReachesStable(t *testing.T) {
	env := &scriptedEnv{}
	start := models.WorldState{Health: 80, Stamina: 20, TreasureThreatLevel: models.ThreatMedium, IsInSafeZone: true, BackupAvailable: true}
	sim := New(newDeps(t, env), start, 10)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStable, report.Outcome)
	require.Len(t, report.Steps, 1)

	st := report.Steps[0]
	assert.Equal(t, goals.ProtectTreasure, st.Goal)
	assert.Equal(t, catalog.DefendTreasure, st.Action)
	assert.True(t, st.Success)
	assert.NotEmpty(t, st.GoalText)
	assert.NotEmpty(t, st.ActionText)
	assert.Equal(t, models.ThreatLow, report.Final.TreasureThreatLevel)
	assert.Equal(t, start, report.Initial)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, sim.ID(), report.RunID)
}

func TestRunDefeat(t *testing.T) {
	env := &scriptedEnv{drift: func(s models.WorldState) models.WorldState {
		s.Health = 0
		return s
	}}
	sim := New(newDeps(t, env), models.DefaultWorldState(), 10)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDefeat, report.Outcome)
	assert.Len(t, report.Steps, 1)
}

func TestRunNoPlan(t *testing.T) {
	env := &scriptedEnv{drift: func(models.WorldState) models.WorldState {
		t.Fatal("drift must not run once planning has failed")
		return models.WorldState{}
	}}
	// Survive needs health 50, but there is no potion and none can be found.
	start := models.WorldState{Health: 20, Stamina: 10, PotionCount: 3, IsInSafeZone: true}
	sim := New(newDeps(t, env), start, 10)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoPlan, report.Outcome)
	require.Len(t, report.Steps, 1)
	assert.Empty(t, report.Steps[0].Plan)
	assert.Empty(t, report.Steps[0].Action)
	assert.Equal(t, start, report.Final)
	assert.Empty(t, env.executed)
}

func TestFailedActionsLeaveStateAndReflect(t *testing.T) {
	env := &scriptedEnv{fail: true}
	start := models.WorldState{Health: 80, Stamina: 20, TreasureThreatLevel: models.ThreatMedium, IsInSafeZone: true}
	sim := New(newDeps(t, env), start, 3)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStepLimit, report.Outcome)
	assert.Len(t, report.Steps, 3)
	assert.Equal(t, start, report.Final)
	assert.Equal(t, []catalog.ActionID{catalog.DefendTreasure, catalog.DefendTreasure, catalog.DefendTreasure}, env.executed)

	require.Len(t, report.Memory, 3)
	for i, st := range report.Steps {
		assert.False(t, st.Success)
		assert.Equal(t, "it went wrong", st.Message)
		assert.Equal(t, report.Memory[i].Reflection, st.Reflection)
		assert.Equal(t, i+1, report.Memory[i].Step)
	}
}

func TestOnlyFirstActionIsExecuted(t *testing.T) {
	env := &scriptedEnv{}
	start := models.WorldState{
		Health: 20, Stamina: 5, TreasureThreatLevel: models.ThreatMedium,
		EnemyNearby: true, BackupAvailable: true,
	}
	sim := New(newDeps(t, env), start, 1)

	st, ok := sim.Step(context.Background())
	require.True(t, ok)
	assert.Equal(t, []catalog.ActionID{catalog.Retreat, catalog.SearchForPotion, catalog.HealSelf}, st.Plan)
	assert.Equal(t, []catalog.ActionID{catalog.Retreat}, env.executed)
	assert.Equal(t, OutcomeStepLimit, st.Outcome)

	_, ok = sim.Step(context.Background())
	assert.False(t, ok, "no steps after the run has ended")
}

func TestSatisfiedGoalSkipsExecution(t *testing.T) {
	env := &scriptedEnv{}
	// PrepareForBattle already holds, but the guardian is outside the safe zone.
	start := models.WorldState{Health: 90, Stamina: 20, HasPotion: true, PotionCount: 1}
	sim := New(newDeps(t, env), start, 2)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStepLimit, report.Outcome)
	assert.Empty(t, env.executed)
	for _, st := range report.Steps {
		assert.Equal(t, goals.PrepareForBattle, st.Goal)
		assert.Empty(t, st.Action)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := New(newDeps(t, &scriptedEnv{}), models.DefaultWorldState(), 5)

	report, err := sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Steps)
	assert.Equal(t, OutcomeRunning, report.Outcome)
}

func TestDefaultMaxSteps(t *testing.T) {
	sim := New(newDeps(t, &scriptedEnv{}), models.DefaultWorldState(), 0)
	assert.Equal(t, DefaultMaxSteps, sim.MaxSteps())
}

func TestBuiltinScenariosWithRealEnvironment(t *testing.T) {
	scenarios, err := models.BuiltinScenarios()
	require.NoError(t, err)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			cfg := engine.DefaultConfig()
			cfg.Seed = 2024
			sim := New(newDeps(t, engine.New(cfg)), sc.State, sc.MaxSteps)

			report, err := sim.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, report.Outcome.Terminal())
			assert.LessOrEqual(t, len(report.Steps), sim.MaxSteps())
			for _, st := range report.Steps {
				assert.GreaterOrEqual(t, st.After.Health, 0)
				assert.LessOrEqual(t, st.After.Health, models.MaxHealth)
				assert.GreaterOrEqual(t, st.After.Stamina, 0)
				if !st.Before.BackupAvailable {
					assert.False(t, st.After.BackupAvailable, "backup never comes back")
				}
			}
		})
	}
}
