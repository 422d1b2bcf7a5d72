package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadMealPlan reads and validates a meal_plan.json document.
func LoadMealPlan(path string) (MealPlan, error) {
	var m MealPlan
	if err := readJSON(path, &m); err != nil {
		return MealPlan{}, err
	}
	if err := m.Validate(); err != nil {
		return MealPlan{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadWorkoutPlan reads and validates a workout_plan.json document.
func LoadWorkoutPlan(path string) (WorkoutPlan, error) {
	var w WorkoutPlan
	if err := readJSON(path, &w); err != nil {
		return nil, err
	}
	return w, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			return fmt.Errorf("%s: %w", path, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, path, err)
	}
	return nil
}
