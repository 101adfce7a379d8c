package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/guardian"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"github.com/tatianab/dungeon-guardian/internal/narrator"
	"github.com/tatianab/dungeon-guardian/internal/planner"
)

type steadyEnv struct{}

func (steadyEnv) Execute(a catalog.Action, s models.WorldState) (bool, string, models.WorldState) {
	return true, "done", a.Apply(s)
}

func (steadyEnv) Drift(s models.WorldState) models.WorldState { return s }

func testModel(t *testing.T) (model, *[]models.Scenario) {
	t.Helper()
	cat, err := catalog.Default(catalog.DefaultPlanningDamage)
	require.NoError(t, err)
	sel, err := goals.NewSelector(nil)
	require.NoError(t, err)
	scenarios, err := models.BuiltinScenarios()
	require.NoError(t, err)

	var started []models.Scenario
	factory := func(sc models.Scenario) (*guardian.Simulation, error) {
		started = append(started, sc)
		return guardian.New(guardian.Deps{
			Catalog:  cat,
			Selector: sel,
			Planner:  planner.New(cat),
			Env:      steadyEnv{},
			Narrator: narrator.NewTemplate(),
		}, sc.State, sc.MaxSteps), nil
	}
	return NewModel(factory, scenarios), &started
}

func typeLine(t *testing.T, m model, text string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model)
}

func TestQuickDemoRunsToTheEnd(t *testing.T) {
	m, started := testModel(t)
	m = typeLine(t, m, "3")
	require.Equal(t, stateRunning, m.state)
	require.Len(t, *started, 1)
	assert.Equal(t, models.QuickDemo, (*started)[0].Name)

	for i := 0; i < 50 && m.state != stateFinished; i++ {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(model)
		require.NotNil(t, cmd)
		next, _ = m.Update(cmd())
		m = next.(model)
	}
	require.Equal(t, stateFinished, m.state)
	assert.Contains(t, m.runLog, "Outcome:")
	assert.Contains(t, m.View(), "Enter: continue")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateMenu, next.(model).state)
}

func TestCustomScenarioPrompts(t *testing.T) {
	m, started := testModel(t)
	m = typeLine(t, m, "2")
	require.Equal(t, stateCustom, m.state)

	for _, answer := range []string{"80", "12", "1", "2", "n", "y", "y", "6"} {
		m = typeLine(t, m, answer)
	}
	require.Equal(t, stateRunning, m.state)
	require.Len(t, *started, 1)
	sc := (*started)[0]
	assert.Equal(t, "custom", sc.Name)
	assert.Equal(t, 6, sc.MaxSteps)
	assert.Equal(t, models.ThreatMedium, sc.State.TreasureThreatLevel)
	assert.True(t, sc.State.HasPotion)
}

func TestRunAllQueuesEveryScenario(t *testing.T) {
	m, _ := testModel(t)
	m = typeLine(t, m, "1")
	require.Equal(t, stateRunning, m.state)
	assert.Len(t, m.queue, len(m.scenarios)-1)
}

func TestInvalidMenuChoice(t *testing.T) {
	m, _ := testModel(t)
	m = typeLine(t, m, "9")
	assert.Equal(t, stateMenu, m.state)
	assert.Contains(t, m.View(), "Invalid choice")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
