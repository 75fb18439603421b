package repository

import (
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// defaultCatalog is seeded into an empty store on first start.
var defaultCatalog = []struct {
	name      string
	group     models.MuscleGroup
	equipment models.Equipment
}{
	{"Barbell Back Squat", models.MuscleLegs, models.EquipmentBarbell},
	{"Barbell Bench Press", models.MuscleChest, models.EquipmentBarbell},
	{"Seated Cable Row", models.MuscleBack, models.EquipmentCable},
	{"Dumbbell Lateral Raise", models.MuscleShoulders, models.EquipmentDumbbell},
	{"Standing Calf Raise", models.MuscleLegs, models.EquipmentMachine},
	{"Dumbbell Biceps Curl", models.MuscleArms, models.EquipmentDumbbell},
	{"Cable Triceps Pushdown", models.MuscleArms, models.EquipmentCable},
	{"Weighted Back Extension", models.MuscleBack, models.EquipmentBodyweight},
	{"Leg Press", models.MuscleLegs, models.EquipmentMachine},
	{"Incline Dumbbell Press", models.MuscleChest, models.EquipmentDumbbell},
	{"Lat Pulldown", models.MuscleBack, models.EquipmentCable},
	{"Seated Dumbbell Press", models.MuscleShoulders, models.EquipmentDumbbell},
	{"Reverse Fly", models.MuscleShoulders, models.EquipmentMachine},
	{"Seated Calf Raise", models.MuscleLegs, models.EquipmentMachine},
	{"Dumbbell Hammer Curl", models.MuscleArms, models.EquipmentDumbbell},
}

func defaultExercises(now time.Time, newID func() string) []models.Exercise {
	out := make([]models.Exercise, 0, len(defaultCatalog))
	for _, d := range defaultCatalog {
		out = append(out, models.Exercise{
			ID:          newID(),
			Name:        d.name,
			Type:        models.TypeStrength,
			MuscleGroup: d.group,
			Equipment:   d.equipment,
			CreatedAt:   now,
		})
	}
	return out
}
