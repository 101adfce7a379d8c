package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

func TestSelectGoal(t *testing.T) {
	tests := []struct {
		name  string
		state models.WorldState
		want  Goal
	}{
		{"critical health beats everything", models.WorldState{Health: 30, TreasureThreatLevel: models.ThreatHigh, EnemyNearby: true}, Survive},
		{"zero health", models.WorldState{Health: 0}, Survive},
		{"high threat with enemy", models.WorldState{Health: 31, TreasureThreatLevel: models.ThreatHigh, EnemyNearby: true}, EliminateThreat},
		{"high threat alone", models.WorldState{Health: 80, TreasureThreatLevel: models.ThreatHigh}, ProtectTreasure},
		{"medium threat with enemy", models.WorldState{Health: 80, TreasureThreatLevel: models.ThreatMedium, EnemyNearby: true}, ProtectTreasure},
		{"quiet", models.WorldState{Health: 80, TreasureThreatLevel: models.ThreatLow, EnemyNearby: true}, PrepareForBattle},
		{"default state", models.DefaultWorldState(), PrepareForBattle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectGoal(tt.state); got != tt.want {
				t.Errorf("SelectGoal(%v) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		goal    Goal
		holds   models.WorldState
		notHold models.WorldState
	}{
		{Survive, models.WorldState{Health: 50, IsInSafeZone: true}, models.WorldState{Health: 49, IsInSafeZone: true}},
		{EliminateThreat, models.WorldState{TreasureThreatLevel: models.ThreatLow}, models.WorldState{EnemyNearby: true}},
		{ProtectTreasure, models.WorldState{EnemyNearby: true}, models.WorldState{TreasureThreatLevel: models.ThreatMedium}},
		{PrepareForBattle, models.WorldState{Stamina: 15, HasPotion: true}, models.WorldState{Stamina: 20, PotionCount: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.goal.String(), func(t *testing.T) {
			p := Predicate(tt.goal)
			require.NoError(t, catalog.ValidateConditions(tt.goal.String(), p))
			assert.True(t, p.Satisfied(tt.holds))
			assert.False(t, p.Satisfied(tt.notHold))
		})
	}
}

func TestParseGoal(t *testing.T) {
	for _, in := range []string{"PrepareForBattle", "prepare-for-battle", "prepare_for_battle", " preparefor battle "} {
		g, err := ParseGoal(in)
		require.NoError(t, err, in)
		assert.Equal(t, PrepareForBattle, g)
	}
	_, err := ParseGoal("flee")
	assert.Error(t, err)
}

func TestSelectorOverrides(t *testing.T) {
	sel, err := NewSelector(map[string][]string{
		"survive": {"health >= 70", "isInSafeZone"},
	})
	require.NoError(t, err)

	p := sel.Predicate(Survive)
	assert.Len(t, p, 2)
	assert.False(t, p.Satisfied(models.WorldState{Health: 60, IsInSafeZone: true}))
	assert.True(t, p.Satisfied(models.WorldState{Health: 70, IsInSafeZone: true}))

	// Untouched goals keep their built-in predicate.
	assert.Equal(t, Predicate(ProtectTreasure).String(), sel.Predicate(ProtectTreasure).String())
}

func TestSelectorRejectsBadOverrides(t *testing.T) {
	_, err := NewSelector(map[string][]string{"conquer": {"health > 0"}})
	assert.Error(t, err)

	_, err = NewSelector(map[string][]string{"survive": {"mana > 0"}})
	assert.ErrorIs(t, err, catalog.ErrMalformed)

	_, err = NewSelector(map[string][]string{"survive": {}})
	assert.ErrorIs(t, err, catalog.ErrMalformed)
}
