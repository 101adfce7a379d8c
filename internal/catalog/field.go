package catalog

import (
	"fmt"

	"github.com/tatianab/dungeon-guardian/internal/models"
)

// Kind describes how a field's Value is interpreted.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindThreat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindThreat:
		return "threat"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a single field's content. Booleans are 0/1 and threat levels are
// their ordinal, so every field fits the same cell.
type Value int

// Bool encodes b as a Value.
func Bool(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// Threat encodes t as a Value.
func Threat(t models.ThreatLevel) Value {
	return Value(t)
}

func (v Value) Bool() bool                 { return v != 0 }
func (v Value) Threat() models.ThreatLevel { return models.ThreatLevel(v) }

// Field names one attribute of models.WorldState.
type Field int

const (
	Health Field = iota
	Stamina
	PotionCount
	TreasureThreatLevel
	EnemyNearby
	IsInSafeZone
	HasPotion
	BackupAvailable
	numFields
)

type fieldInfo struct {
	name     string
	kind     Kind
	min, max int // max < 0 means unbounded
}

var fields = [numFields]fieldInfo{
	Health:              {"health", KindInt, 0, models.MaxHealth},
	Stamina:             {"stamina", KindInt, 0, -1},
	PotionCount:         {"potionCount", KindInt, 0, -1},
	TreasureThreatLevel: {"treasureThreatLevel", KindThreat, int(models.ThreatLow), int(models.ThreatHigh)},
	EnemyNearby:         {"enemyNearby", KindBool, 0, 1},
	IsInSafeZone:        {"isInSafeZone", KindBool, 0, 1},
	HasPotion:           {"hasPotion", KindBool, 0, 1},
	BackupAvailable:     {"backupAvailable", KindBool, 0, 1},
}

// Fields returns every field in canonical order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Valid reports whether f names a WorldState field.
func (f Field) Valid() bool {
	return f >= 0 && f < numFields
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fields[f].name
}

func (f Field) Kind() Kind {
	if !f.Valid() {
		return KindInt
	}
	return fields[f].kind
}

// Accepts reports whether v is within the range the field can hold.
func (f Field) Accepts(v Value) bool {
	if !f.Valid() {
		return false
	}
	info := fields[f]
	if int(v) < info.min {
		return false
	}
	return info.max < 0 || int(v) <= info.max
}

// ParseField resolves a field by its name, e.g. "potionCount".
func ParseField(name string) (Field, error) {
	for i, info := range fields {
		if info.name == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown world state field %q", name)
}

// Get reads f from s.
func (f Field) Get(s models.WorldState) Value {
	switch f {
	case Health:
		return Value(s.Health)
	case Stamina:
		return Value(s.Stamina)
	case PotionCount:
		return Value(s.PotionCount)
	case TreasureThreatLevel:
		return Threat(s.TreasureThreatLevel)
	case EnemyNearby:
		return Bool(s.EnemyNearby)
	case IsInSafeZone:
		return Bool(s.IsInSafeZone)
	case HasPotion:
		return Bool(s.HasPotion)
	case BackupAvailable:
		return Bool(s.BackupAvailable)
	}
	panic(fmt.Sprintf("catalog: get of invalid field %d", int(f)))
}

// Set returns a copy of s with f replaced by v.
func (f Field) Set(s models.WorldState, v Value) models.WorldState {
	switch f {
	case Health:
		s.Health = int(v)
	case Stamina:
		s.Stamina = int(v)
	case PotionCount:
		s.PotionCount = int(v)
	case TreasureThreatLevel:
		s.TreasureThreatLevel = v.Threat()
	case EnemyNearby:
		s.EnemyNearby = v.Bool()
	case IsInSafeZone:
		s.IsInSafeZone = v.Bool()
	case HasPotion:
		s.HasPotion = v.Bool()
	case BackupAvailable:
		s.BackupAvailable = v.Bool()
	default:
		panic(fmt.Sprintf("catalog: set of invalid field %d", int(f)))
	}
	return s
}

// Format renders v the way the field's kind reads.
func (f Field) Format(v Value) string {
	switch f.Kind() {
	case KindBool:
		return fmt.Sprint(v.Bool())
	case KindThreat:
		return v.Threat().String()
	}
	return fmt.Sprint(int(v))
}
