/*
Package workout produces the weekly workout plan fed to the renderer, either
from goal-based templates or from a workout_plan.json document on disk.
*/
package workout

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"healthcast/internal/plan"
	"healthcast/internal/profile"
)

// Planner yields a workout plan for a profile.
type Planner interface {
	Plan(ctx context.Context, p profile.FitnessProfile) (plan.WorkoutPlan, error)
}

// FileSource serves a fixed, externally produced workout_plan.json.
type FileSource struct {
	Path string
}

func (f FileSource) Plan(ctx context.Context, _ profile.FitnessProfile) (plan.WorkoutPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return plan.LoadWorkoutPlan(f.Path)
}

// TemplatePlanner picks a 7-day template from the profile's goals and scales
// sets and reps by fitness level. Sunday is always left as rest.
type TemplatePlanner struct{}

func (TemplatePlanner) Plan(ctx context.Context, p profile.FitnessProfile) (plan.WorkoutPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	goal := PrimaryGoal(p)
	sets, repScale := intensity(p.FitnessLevel)

	out := make(plan.WorkoutPlan, len(templates[goal]))
	for day, moves := range templates[goal] {
		exercises := make([]plan.Exercise, len(moves))
		for i, m := range moves {
			if m.timed {
				exercises[i] = plan.Exercise{Name: m.name, Notes: m.notes}
				continue
			}
			exercises[i] = plan.Exercise{
				Name:  m.name,
				Sets:  strconv.Itoa(sets),
				Reps:  strconv.Itoa(max(1, int(float64(m.reps)*repScale+0.5))),
				Notes: m.notes,
			}
		}
		out[day] = exercises
	}

	log.Debug().
		Str("component", "workout").
		Str("goal", string(goal)).
		Str("fitness_level", string(p.FitnessLevel)).
		Msg("workout plan built from template")
	return out, nil
}

// goalPriority decides which template wins when several goals are set.
var goalPriority = []profile.Goal{
	profile.GoalMuscleBuilding,
	profile.GoalWeightLoss,
	profile.GoalStrength,
	profile.GoalEndurance,
	profile.GoalFlexibility,
	profile.GoalGeneralFitness,
}

// PrimaryGoal returns the highest priority goal of the profile. Without goals
// it leans on BMI: overweight and above trains for weight loss.
func PrimaryGoal(p profile.FitnessProfile) profile.Goal {
	for _, g := range goalPriority {
		if p.Goals.Has(g) {
			return g
		}
	}
	if p.BMI != nil && *p.BMI >= 25 {
		return profile.GoalWeightLoss
	}
	return profile.GoalGeneralFitness
}

func intensity(level profile.FitnessLevel) (sets int, repScale float64) {
	switch level {
	case profile.FitnessAdvanced:
		return 4, 1.25
	case profile.FitnessIntermediate:
		return 3, 1.0
	default:
		return 2, 0.75
	}
}
