/*
Package plan holds the meal and workout plan documents consumed by the weekly
plan renderer, together with their loading and schema checks.
*/
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var (
	// ErrMissingArtifact means an upstream document was never produced.
	ErrMissingArtifact = errors.New("missing upstream artifact")
	// ErrSchemaMismatch means a document lacks a required key or has the wrong shape.
	ErrSchemaMismatch = errors.New("plan schema mismatch")
)

// Weekdays is the fixed row order of the workout table.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so errors read like the document
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

/* =================================================================================
								MEAL PLAN
=================================================================================*/

type FoodPortion struct {
	Food   string `json:"food" validate:"required"`
	Amount string `json:"amount,omitempty"`
}

type Alternative struct {
	Dish       string        `json:"dish" validate:"required"`
	Confidence string        `json:"confidence,omitempty"`
	Foods      []FoodPortion `json:"foods,omitempty" validate:"dive"`
}

// MealSlot is one meal of the day with its recommended dish.
type MealSlot struct {
	Meal           string        `json:"meal" validate:"required"`
	Recommended    string        `json:"recommended,omitempty"`
	Foods          []FoodPortion `json:"foods,omitempty" validate:"dive"`
	Alternatives   []Alternative `json:"alternatives,omitempty" validate:"dive"`
	MainConfidence string        `json:"main_confidence,omitempty"`
}

type MealPlan struct {
	Meals []MealSlot `json:"meal_plan" validate:"dive"`
}

// Validate reports the first schema violation wrapped in ErrSchemaMismatch.
func (m MealPlan) Validate() error {
	if err := validate.Struct(m); err != nil {
		return schemaError(err)
	}
	for i, slot := range m.Meals {
		if slot.Recommended == "" && len(slot.Foods) == 0 {
			return fmt.Errorf("%w: meal_plan[%d]: needs recommended or foods", ErrSchemaMismatch, i)
		}
	}
	return nil
}

func schemaError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		// drop the root struct name from the namespace
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		return fmt.Errorf("%w: %s: failed %q", ErrSchemaMismatch, path, fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
}

/* =================================================================================
								WORKOUT PLAN
=================================================================================*/

// Exercise is either a structured entry or a bare description string.
type Exercise struct {
	Name  string
	Sets  string
	Reps  string
	Notes string
	// Bare marks entries written as a plain string.
	Bare bool
}

type exerciseDoc struct {
	Exercise *string `json:"exercise"`
	Sets     any     `json:"sets,omitempty"`
	Reps     any     `json:"reps,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*e = Exercise{Name: bare, Bare: true}
		return nil
	}

	var doc exerciseDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: exercise must be a string or an object: %v", ErrSchemaMismatch, err)
	}
	if doc.Exercise == nil || strings.TrimSpace(*doc.Exercise) == "" {
		return fmt.Errorf("%w: exercise object without \"exercise\"", ErrSchemaMismatch)
	}

	sets, err := scalar(doc.Sets)
	if err != nil {
		return fmt.Errorf("%w: sets: %v", ErrSchemaMismatch, err)
	}
	reps, err := scalar(doc.Reps)
	if err != nil {
		return fmt.Errorf("%w: reps: %v", ErrSchemaMismatch, err)
	}

	*e = Exercise{Name: *doc.Exercise, Sets: sets, Reps: reps, Notes: doc.Notes}
	return nil
}

func (e Exercise) MarshalJSON() ([]byte, error) {
	if e.Bare {
		return json.Marshal(e.Name)
	}
	name := e.Name
	return json.Marshal(exerciseDoc{
		Exercise: &name,
		Sets:     number(e.Sets),
		Reps:     number(e.Reps),
		Notes:    e.Notes,
	})
}

// scalar accepts numbers or strings ("8-12") for sets and reps.
func scalar(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	return cast.ToStringE(v)
}

// number writes integral counts back as JSON numbers.
func number(s string) any {
	if s == "" {
		return nil
	}
	if n, err := cast.ToIntE(s); err == nil {
		return n
	}
	return s
}

// WorkoutPlan maps a weekday name to that day's exercises.
type WorkoutPlan map[string][]Exercise

func (w *WorkoutPlan) UnmarshalJSON(data []byte) error {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: workout plan must map days to lists: %v", ErrSchemaMismatch, err)
	}

	out := make(WorkoutPlan, len(raw))
	for key, items := range raw {
		day, ok := canonicalDay(key)
		if !ok {
			return fmt.Errorf("%w: %q is not a weekday", ErrSchemaMismatch, key)
		}
		if _, dup := out[day]; dup {
			return fmt.Errorf("%w: %s appears more than once", ErrSchemaMismatch, day)
		}
		exercises := make([]Exercise, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &exercises[i]); err != nil {
				return fmt.Errorf("%s[%d]: %w", day, i, err)
			}
		}
		out[day] = exercises
	}
	*w = out
	return nil
}

// Validate checks plans built in code rather than decoded.
func (w WorkoutPlan) Validate() error {
	seen := make(map[string]bool, len(w))
	for key, exercises := range w {
		day, ok := canonicalDay(key)
		if !ok {
			return fmt.Errorf("%w: %q is not a weekday", ErrSchemaMismatch, key)
		}
		if seen[day] {
			return fmt.Errorf("%w: %s appears more than once", ErrSchemaMismatch, day)
		}
		seen[day] = true
		for i, ex := range exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("%w: %s[%d]: exercise without name", ErrSchemaMismatch, key, i)
			}
		}
	}
	return nil
}

// Day returns the exercises for a weekday, matching the key case-insensitively.
// A plan that passed Validate has at most one key per weekday.
func (w WorkoutPlan) Day(day string) []Exercise {
	if ex, ok := w[day]; ok {
		return ex
	}
	want, ok := canonicalDay(day)
	if !ok {
		return nil
	}
	for key, ex := range w {
		if got, _ := canonicalDay(key); got == want {
			return ex
		}
	}
	return nil
}

func canonicalDay(key string) (string, bool) {
	key = strings.TrimSpace(key)
	for _, day := range Weekdays {
		if strings.EqualFold(key, day) {
			return day, true
		}
	}
	return "", false
}
