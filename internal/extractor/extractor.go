/*
Package extractor turns a free-text self-description into a
profile.FitnessProfile. Each field has its own ordered pattern table; the
Extractor runs all of them over the same text and assembles the result.
*/
package extractor

import (
	"context"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"healthcast/internal/profile"
)

// Extras are caller-supplied preferences that cannot be read from the text.
type Extras struct {
	NutritionPreferences string   `json:"nutrition_preferences,omitempty"`
	SchedulePreferences  string   `json:"schedule_preferences,omitempty"`
	MedicalConditions    []string `json:"medical_conditions,omitempty"`
	EquipmentAvailable   []string `json:"equipment_available,omitempty"`
}

// Extractor assembles profiles. The zero value is ready to use.
type Extractor struct {
	// BatchLimit caps concurrent extractions in ExtractBatch; <= 0 uses GOMAXPROCS.
	BatchLimit int
}

func New() *Extractor {
	return &Extractor{}
}

// Extract never fails: unrecognized fields are simply left empty.
func (e *Extractor) Extract(text string) profile.FitnessProfile {
	return e.ExtractWith(text, Extras{})
}

// ExtractWith is Extract plus the given preferences.
func (e *Extractor) ExtractWith(text string, extras Extras) profile.FitnessProfile {
	draft := profile.FitnessProfile{
		NutritionPreferences: strings.TrimSpace(extras.NutritionPreferences),
		SchedulePreferences:  strings.TrimSpace(extras.SchedulePreferences),
		MedicalConditions:    compact(extras.MedicalConditions),
		EquipmentAvailable:   compact(extras.EquipmentAvailable),
	}

	if age, ok := Age(text); ok {
		draft.Age = profile.IntPtr(age)
	}
	if weight, ok := Weight(text); ok {
		draft.WeightKg = profile.FloatPtr(weight)
	}
	if height, ok := Height(text); ok {
		draft.HeightCm = profile.FloatPtr(height)
	}
	if gender, ok := GenderOf(text); ok {
		draft.Gender = gender
	}
	if level, ok := FitnessLevelOf(text); ok {
		draft.FitnessLevel = level
	}
	if level, ok := ActivityLevelOf(text); ok {
		draft.ActivityLevel = level
	}
	if goals, ok := Goals(text); ok {
		draft.Goals = goals
	}

	p := profile.New(draft)
	log.Debug().
		Str("component", "extractor").
		Int("text_len", len(text)).
		Bool("empty", p.IsEmpty()).
		Msg("profile extracted")
	return p
}

// ExtractBatch extracts every text concurrently and returns the profiles in
// input order. It only fails when ctx is cancelled.
func (e *Extractor) ExtractBatch(ctx context.Context, texts []string) ([]profile.FitnessProfile, error) {
	out := make([]profile.FitnessProfile, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit())
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.Extract(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Extractor) batchLimit() int {
	if e.BatchLimit > 0 {
		return e.BatchLimit
	}
	return runtime.GOMAXPROCS(0)
}

// compact trims entries and drops blanks.
func compact(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
