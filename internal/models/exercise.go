package models

import (
	"fmt"
	"strings"
	"time"
)

// ExerciseType classifies an exercise by training intent.
type ExerciseType string

const (
	TypeStrength    ExerciseType = "strength"
	TypeHypertrophy ExerciseType = "hypertrophy"
	TypeAccessory   ExerciseType = "accessory"
	TypeWarmup      ExerciseType = "warmup"
)

// Validate reports whether t is one of the known exercise types.
func (t ExerciseType) Validate() error {
	switch t {
	case TypeStrength, TypeHypertrophy, TypeAccessory, TypeWarmup:
		return nil
	default:
		return fmt.Errorf("unsupported exercise type %q", string(t))
	}
}

// MuscleGroup is the primary muscle group an exercise trains.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleLegs      MuscleGroup = "legs"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleArms      MuscleGroup = "arms"
	MuscleCore      MuscleGroup = "core"
)

func (g MuscleGroup) Validate() error {
	switch g {
	case MuscleChest, MuscleBack, MuscleLegs, MuscleShoulders, MuscleArms, MuscleCore:
		return nil
	default:
		return fmt.Errorf("unsupported muscle group %q", string(g))
	}
}

// Equipment is the equipment class of an exercise. It decides the size of
// the load step used by progression recommendations.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentCable      Equipment = "cable"
	EquipmentMachine    Equipment = "machine"
	EquipmentBodyweight Equipment = "bodyweight"
)

func (e Equipment) Validate() error {
	switch e {
	case EquipmentBarbell, EquipmentDumbbell, EquipmentCable, EquipmentMachine, EquipmentBodyweight:
		return nil
	default:
		return fmt.Errorf("unsupported equipment %q", string(e))
	}
}

// SmallIncrements reports whether loads for this equipment move in 2.5 kg steps
// rather than 5 kg.
func (e Equipment) SmallIncrements() bool {
	return e == EquipmentDumbbell || e == EquipmentCable
}

// smallStepKeywords are lowercased name fragments that mark dumbbell and
// cable-pulley movements in exercise names created before equipment was
// tracked explicitly. Russian fragments come from the original catalog.
var smallStepKeywords = []struct {
	fragment  string
	equipment Equipment
}{
	{"гантел", EquipmentDumbbell},
	{"dumbbell", EquipmentDumbbell},
	{"блока", EquipmentCable},
	{"cable", EquipmentCable},
}

// EquipmentFromName infers the equipment class from an exercise name.
// Names without a dumbbell or cable marker are treated as barbell lifts.
func EquipmentFromName(name string) Equipment {
	lower := strings.ToLower(name)
	for _, k := range smallStepKeywords {
		if strings.Contains(lower, k.fragment) {
			return k.equipment
		}
	}
	return EquipmentBarbell
}

// Exercise is a named movement that workouts are logged against.
type Exercise struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ExerciseType `json:"type"`
	MuscleGroup MuscleGroup  `json:"muscleGroup"`
	Equipment   Equipment    `json:"equipment,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
}

// EquipmentClass returns the explicit equipment, falling back to the name
// heuristic for exercises that never had one assigned.
func (e Exercise) EquipmentClass() Equipment {
	if e.Equipment != "" {
		return e.Equipment
	}
	return EquipmentFromName(e.Name)
}

// SameName reports whether name matches the exercise name case-insensitively.
func (e Exercise) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(name))
}
