package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestScenariosCommand(t *testing.T) {
	out, err := execute(t, "scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "critical-situation")
	assert.Contains(t, out, "lone-guardian")
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "calm")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: calm-before-the-storm")
	assert.Contains(t, out, "Goal:     PrepareForBattle")
	assert.Contains(t, out, "1. SearchForPotion")
}

func TestPlanCommandForcedGoal(t *testing.T) {
	out, err := execute(t, "plan", "wounded-in-sanctuary", "--goal", "protect-treasure")
	require.NoError(t, err)
	assert.Contains(t, out, "Goal:     ProtectTreasure")
	assert.Contains(t, out, "goal already satisfied")

	_, err = execute(t, "plan", "--goal", "conquer")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "--seed", "7", "run", "critical", "--steps", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "=== critical-situation ===")
	assert.Regexp(t, `Run:   [0-9a-f-]{36}\n`, out)
	assert.Contains(t, out, "Step 1 - goal Survive")
	assert.Contains(t, out, "Outcome:")
}

func TestRunAllCommand(t *testing.T) {
	out, err := execute(t, "--seed", "11", "run", "--all", "--steps", "2")
	require.NoError(t, err)
	scenarios, err := models.BuiltinScenarios()
	require.NoError(t, err)
	for _, sc := range scenarios {
		assert.Contains(t, out, "=== "+sc.Name+" ===")
	}
}

func TestRunUnknownScenario(t *testing.T) {
	_, err := execute(t, "run", "dragon-hoard")
	assert.Error(t, err)

	_, err = execute(t, "run", "--all", "lone")
	assert.Error(t, err)
}

func TestExtraScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	doc := `
- name: last-stand
  description: Nothing left but resolve.
  max_steps: 4
  state:
    health: 35
    stamina: 6
    treasure_threat_level: high
    enemy_nearby: true
    is_in_safe_zone: true
  goal_overrides:
    eliminate-threat:
      - "!enemyNearby"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	out, err := execute(t, "--scenarios", path, "plan", "last-stand")
	require.NoError(t, err)
	assert.Contains(t, out, "Goal:     EliminateThreat (!enemyNearby)")
	assert.Contains(t, out, "1. AttackEnemy")
	assert.Contains(t, out, "note: AttackEnemy changes health at random")
}

func TestGeminiNeedsKey(t *testing.T) {
	_, err := execute(t, "--narrator", "gemini", "scenarios")
	assert.ErrorContains(t, err, "API key")
}
