/*
Package nutrition adapts the pre-trained meal classifier. The model is read
from an exported JSON document (label encoders, a standard scaler and one
multinomial logistic layer per meal) and turned into a plan.MealPlan.
*/
package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
)

var (
	// ErrModelUnavailable means the model file is missing or unusable.
	ErrModelUnavailable = errors.New("meal model unavailable")
	// ErrMissingFeatures means the profile lacks a numeric feature the model needs.
	ErrMissingFeatures = errors.New("profile is missing model features")
)

// MealTypes is the fixed slot order of every generated plan.
var MealTypes = []string{"breakfast", "lunch", "dinner"}

// Numeric feature names, in scaler order.
const (
	FeatureAge    = "age"
	FeatureWeight = "weight"
	FeatureHeight = "height"
	FeatureBMI    = "bmi"
)

// Categorical feature names.
const (
	FeatureGender        = "gender"
	FeatureFitnessLevel  = "fitness_level"
	FeatureActivityLevel = "activity_level"
	FeatureGoals         = "goals"
)

const unknownCategory = "unknown"

// Scaler is a fitted standard scaler: x' = (x - mean) / scale.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// MealModel is one multinomial logistic classifier.
type MealModel struct {
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// Model is the exported classifier bundle.
type Model struct {
	// Categorical holds each encoder's sorted classes; index is the encoded value.
	Categorical  map[string][]string  `json:"categorical"`
	Numeric      Scaler               `json:"numeric"`
	FeatureOrder []string             `json:"feature_order"`
	Meals        map[string]MealModel `json:"meals"`
}

// LoadPredictor reads the exported model at path.
func LoadPredictor(path string) (*Predictor, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrModelUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModelUnavailable, path, err)
	}
	p, err := NewPredictor(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Info().
		Str("component", "nutrition").
		Str("path", path).
		Int("features", len(m.FeatureOrder)).
		Msg("meal model loaded")
	return p, nil
}

// check verifies that every dimension lines up before any prediction runs.
func (m Model) check() error {
	if len(m.Numeric.Mean) != len(m.Numeric.Columns) || len(m.Numeric.Scale) != len(m.Numeric.Columns) {
		return errors.New("scaler columns, mean and scale differ in length")
	}
	for i, s := range m.Numeric.Scale {
		if s == 0 {
			return fmt.Errorf("scaler column %q has zero scale", m.Numeric.Columns[i])
		}
	}

	for _, name := range m.FeatureOrder {
		if m.numericIndex(name) >= 0 {
			continue
		}
		classes, ok := m.Categorical[name]
		if !ok {
			return fmt.Errorf("feature %q has no encoder or scaler column", name)
		}
		if indexOf(classes, unknownCategory) < 0 {
			return fmt.Errorf("encoder %q has no %q class", name, unknownCategory)
		}
	}

	for _, meal := range MealTypes {
		mm, ok := m.Meals[meal]
		if !ok {
			return fmt.Errorf("no classifier for %s", meal)
		}
		if len(mm.Classes) == 0 || len(mm.Coef) != len(mm.Classes) || len(mm.Intercept) != len(mm.Classes) {
			return fmt.Errorf("%s classifier: classes, coef and intercept differ in length", meal)
		}
		for _, row := range mm.Coef {
			if len(row) != len(m.FeatureOrder) {
				return fmt.Errorf("%s classifier: coef row has %d weights, want %d", meal, len(row), len(m.FeatureOrder))
			}
		}
	}
	return nil
}

func (m Model) numericIndex(name string) int {
	return indexOf(m.Numeric.Columns, name)
}

func indexOf(items []string, v string) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}
