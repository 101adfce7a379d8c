package models

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

//go:embed scenarios.yaml
var builtinScenarios []byte

// QuickDemo is the name of the built-in critical-situation scenario.
const QuickDemo = "critical-situation"

// BuiltinScenarios returns the scenarios shipped with the binary.
func BuiltinScenarios() ([]Scenario, error) {
	return parseScenarios(builtinScenarios)
}

// Validate checks that the scenario's state is within range.
func (sc Scenario) Validate() error {
	if strings.TrimSpace(sc.Name) == "" {
		return fmt.Errorf("scenario has no name")
	}
	if sc.MaxSteps < 0 {
		return fmt.Errorf("scenario %q: max_steps %d is negative", sc.Name, sc.MaxSteps)
	}
	s := sc.State
	if s.Health < 0 || s.Health > MaxHealth {
		return fmt.Errorf("scenario %q: health %d outside 0-%d", sc.Name, s.Health, MaxHealth)
	}
	if s.Stamina < 0 {
		return fmt.Errorf("scenario %q: stamina %d is negative", sc.Name, s.Stamina)
	}
	if s.PotionCount < 0 {
		return fmt.Errorf("scenario %q: potion_count %d is negative", sc.Name, s.PotionCount)
	}
	if !s.TreasureThreatLevel.Valid() {
		return fmt.Errorf("scenario %q: invalid threat level %d", sc.Name, int(s.TreasureThreatLevel))
	}
	return nil
}

// FindScenario looks a scenario up by name: an exact match first, then a
// unique prefix, then the closest name by edit distance if it is close
// enough to be a typo.
func FindScenario(name string, scenarios []Scenario) (Scenario, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Scenario{}, fmt.Errorf("empty scenario name")
	}
	for _, sc := range scenarios {
		if strings.ToLower(sc.Name) == query {
			return sc, nil
		}
	}

	var prefixed []Scenario
	for _, sc := range scenarios {
		if strings.HasPrefix(strings.ToLower(sc.Name), query) {
			prefixed = append(prefixed, sc)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], nil
	}
	if len(prefixed) > 1 {
		names := make([]string, len(prefixed))
		for i, sc := range prefixed {
			names[i] = sc.Name
		}
		sort.Strings(names)
		return Scenario{}, fmt.Errorf("scenario %q is ambiguous: %s", name, strings.Join(names, ", "))
	}

	best, bestDist := -1, 0
	for i, sc := range scenarios {
		cand := strings.ToLower(sc.Name)
		dist := levenshtein.ComputeDistance(query, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return Scenario{}, fmt.Errorf("no scenario named %q", name)
	}
	return scenarios[best], nil
}

func levenshteinLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 10:
		return 2
	default:
		return 3
	}
}

// CustomAnswers are the raw replies to the custom scenario questions.
type CustomAnswers struct {
	Health          string
	Stamina         string
	Potions         string
	Threat          string // "1", "2" or "3"
	EnemyNearby     string // y/n
	InSafeZone      string
	BackupAvailable string
	MaxSteps        string
}

// CustomQuestion is one prompt of the custom scenario creator.
type CustomQuestion struct {
	Prompt string
	Set    func(*CustomAnswers, string)
}

// CustomQuestions lists the prompts in the order they are asked.
var CustomQuestions = []CustomQuestion{
	{"Guardian health (1-100)", func(a *CustomAnswers, v string) { a.Health = v }},
	{"Guardian stamina (1-20)", func(a *CustomAnswers, v string) { a.Stamina = v }},
	{"Potion count (0-5)", func(a *CustomAnswers, v string) { a.Potions = v }},
	{"Treasure threat level: 1 low, 2 medium, 3 high", func(a *CustomAnswers, v string) { a.Threat = v }},
	{"Enemy nearby? (y/n)", func(a *CustomAnswers, v string) { a.EnemyNearby = v }},
	{"In safe zone? (y/n)", func(a *CustomAnswers, v string) { a.InSafeZone = v }},
	{"Backup available? (y/n)", func(a *CustomAnswers, v string) { a.BackupAvailable = v }},
	{"Maximum simulation steps (5-30, default 15)", func(a *CustomAnswers, v string) { a.MaxSteps = v }},
}

const (
	defaultCustomSteps = 15
	minCustomSteps     = 5
	maxCustomSteps     = 30
	maxCustomPotions   = 5
)

// CustomScenario turns answers into a scenario. Numbers are clamped to
// their ranges; if any of the three numeric stats is not a number the whole
// state falls back to a modest default.
func CustomScenario(a CustomAnswers) Scenario {
	sc := Scenario{
		Name:        "custom",
		Description: "Created from the custom scenario prompts.",
		MaxSteps:    defaultCustomSteps,
	}
	if steps, err := strconv.Atoi(strings.TrimSpace(a.MaxSteps)); err == nil {
		sc.MaxSteps = clamp(steps, minCustomSteps, maxCustomSteps)
	}

	health, errH := strconv.Atoi(strings.TrimSpace(a.Health))
	stamina, errS := strconv.Atoi(strings.TrimSpace(a.Stamina))
	potions, errP := strconv.Atoi(strings.TrimSpace(a.Potions))
	threat, errT := strconv.Atoi(strings.TrimSpace(a.Threat))
	if errH != nil || errS != nil || errP != nil || errT != nil {
		s := DefaultWorldState()
		s.Health = 50
		s.Stamina = 10
		s.PotionCount = 1
		s.HasPotion = true
		sc.State = s
		return sc
	}

	level := ThreatLow
	switch threat {
	case 2:
		level = ThreatMedium
	case 3:
		level = ThreatHigh
	}
	potions = clamp(potions, 0, maxCustomPotions)
	sc.State = WorldState{
		Health:              clamp(health, 1, MaxHealth),
		Stamina:             clamp(stamina, 1, MaxStamina),
		PotionCount:         potions,
		HasPotion:           potions > 0,
		TreasureThreatLevel: level,
		EnemyNearby:         yes(a.EnemyNearby),
		IsInSafeZone:        yes(a.InSafeZone),
		BackupAvailable:     yes(a.BackupAvailable),
	}
	return sc
}

func yes(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "y")
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
