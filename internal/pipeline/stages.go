package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"healthcast/internal/extractor"
	"healthcast/internal/nutrition"
	"healthcast/internal/plan"
	"healthcast/internal/profile"
	"healthcast/internal/storage"
	"healthcast/internal/utility"
	"healthcast/internal/workout"
)

// Artifact file names inside the output directory.
const (
	ProfilesFile    = "fitness_profiles.json"
	MealPlanFile    = "meal_plan.json"
	WorkoutPlanFile = "workout_plan.json"
	WeeklyPlanFile  = "weekly_plan.md"
	ScriptFile      = "motivational_script.md"
	AudioFile       = "podcast.mp3"
)

// ArtifactFiles lists every file a run can produce.
var ArtifactFiles = []string{ProfilesFile, MealPlanFile, WorkoutPlanFile, WeeklyPlanFile, ScriptFile, AudioFile}

// ScriptHeader opens every persisted motivational script.
const ScriptHeader = "# Motivational Script"

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

func (r *Runner) path(name string) string {
	return filepath.Join(r.OutputDir, name)
}

// Unset collaborators fall back to the file store, a fresh extractor and the
// template planner. Concurrent runs must share an explicit Store.
func (r *Runner) store() storage.ProfileStore {
	if r.Store == nil {
		return storage.NewJSONFileStore(r.path(ProfilesFile))
	}
	return r.Store
}

// profilesArtifact is the file profiles land in, or "" when the store is not
// file backed.
func (r *Runner) profilesArtifact() string {
	if fs, ok := r.store().(*storage.JSONFileStore); ok {
		return fs.Path()
	}
	return ""
}

func (r *Runner) extractor() *extractor.Extractor {
	if r.Extractor == nil {
		return extractor.New()
	}
	return r.Extractor
}

func (r *Runner) planner() workout.Planner {
	if r.Workouts == nil {
		return workout.TemplatePlanner{}
	}
	return r.Workouts
}

// ExtractProfile builds a profile from text and appends it to the store.
func (r *Runner) ExtractProfile(ctx context.Context, text string, extras extractor.Extras) (profile.FitnessProfile, error) {
	p := r.extractor().ExtractWith(text, extras)
	if err := r.store().Append(ctx, p); err != nil {
		return p, stageErr(StageExtract, fmt.Errorf("store profile: %w", err))
	}
	return p, nil
}

// LatestProfile reads the most recently stored profile.
func (r *Runner) LatestProfile(ctx context.Context) (profile.FitnessProfile, error) {
	p, err := r.store().Latest(ctx)
	return p, stageErr(StageExtract, err)
}

// MealPlan predicts the meal plan and writes meal_plan.json. A prediction
// failure is not fatal: the default plan is used and fallback is true.
func (r *Runner) MealPlan(ctx context.Context, p profile.FitnessProfile) (meals plan.MealPlan, fallback bool, err error) {
	if err := ctx.Err(); err != nil {
		return plan.MealPlan{}, false, stageErr(StageMeals, err)
	}
	if r.Predictor == nil {
		return plan.MealPlan{}, false, stageErr(StageMeals, nutrition.ErrModelUnavailable)
	}

	meals, err = r.Predictor.Predict(p)
	if err != nil {
		log.Warn().Err(err).Str("stage", string(StageMeals)).Msg("meal prediction failed, using default meal plan")
		meals, fallback = nutrition.DefaultMealPlan(), true
	}

	if err := r.writeJSON(MealPlanFile, meals); err != nil {
		return meals, fallback, stageErr(StageMeals, err)
	}
	return meals, fallback, nil
}

// LoadMealPlan reads meal_plan.json from the output directory.
func (r *Runner) LoadMealPlan() (plan.MealPlan, error) {
	m, err := plan.LoadMealPlan(r.path(MealPlanFile))
	return m, stageErr(StageMeals, err)
}

// WorkoutPlan asks the planner for a plan and writes workout_plan.json.
func (r *Runner) WorkoutPlan(ctx context.Context, p profile.FitnessProfile) (plan.WorkoutPlan, error) {
	w, err := r.planner().Plan(ctx, p)
	if err != nil {
		return nil, stageErr(StageWorkouts, err)
	}
	if err := r.writeJSON(WorkoutPlanFile, w); err != nil {
		return w, stageErr(StageWorkouts, err)
	}
	return w, nil
}

// LoadWorkoutPlan reads workout_plan.json from the output directory.
func (r *Runner) LoadWorkoutPlan() (plan.WorkoutPlan, error) {
	w, err := plan.LoadWorkoutPlan(r.path(WorkoutPlanFile))
	return w, stageErr(StageWorkouts, err)
}

// RenderPlan renders and writes weekly_plan.md.
func (r *Runner) RenderPlan(p profile.FitnessProfile, meals plan.MealPlan, workouts plan.WorkoutPlan) (string, error) {
	md, err := plan.Render(p, meals, workouts)
	if err != nil {
		return "", stageErr(StageRender, err)
	}
	if err := utility.WriteFileAtomic(r.path(WeeklyPlanFile), []byte(md), 0o644); err != nil {
		return md, stageErr(StageRender, err)
	}
	return md, nil
}

// LoadWeeklyPlan reads weekly_plan.md from the output directory.
func (r *Runner) LoadWeeklyPlan() (string, error) {
	md, err := r.readText(WeeklyPlanFile)
	return md, stageErr(StageRender, err)
}

// MotivationalScript asks the script writer for a pep talk on the weekly plan
// and writes motivational_script.md under the fixed header.
func (r *Runner) MotivationalScript(ctx context.Context, weeklyPlan string) (string, error) {
	if r.Scripts == nil {
		return "", stageErr(StageScript, errors.New("no script writer configured"))
	}
	script, err := r.Scripts.GenerateMotivationalScript(ctx, weeklyPlan)
	if err != nil {
		return "", stageErr(StageScript, err)
	}

	doc := ScriptHeader + "\n\n" + script + "\n"
	if err := utility.WriteFileAtomic(r.path(ScriptFile), []byte(doc), 0o644); err != nil {
		return script, stageErr(StageScript, err)
	}
	return script, nil
}

// LoadScript reads motivational_script.md and returns the body without header.
func (r *Runner) LoadScript() (string, error) {
	doc, err := r.readText(ScriptFile)
	if err != nil {
		return "", stageErr(StageScript, err)
	}
	return StripScriptHeader(doc), nil
}

// PodcastAudio synthesizes the script and writes podcast.mp3.
func (r *Runner) PodcastAudio(ctx context.Context, script, voiceID string) ([]byte, error) {
	if r.Speech == nil {
		return nil, stageErr(StageAudio, errors.New("no speech synthesizer configured"))
	}
	if voiceID == "" {
		voiceID = r.VoiceID
	}

	audio, err := r.Speech.Synthesize(ctx, StripScriptHeader(script), voiceID)
	if err != nil {
		return nil, stageErr(StageAudio, err)
	}
	if err := utility.WriteFileAtomic(r.path(AudioFile), audio, 0o644); err != nil {
		return audio, stageErr(StageAudio, err)
	}
	return audio, nil
}

// StripScriptHeader drops the "# Motivational Script" heading so it is not
// read aloud.
func StripScriptHeader(doc string) string {
	doc = strings.TrimSpace(doc)
	if rest, ok := strings.CutPrefix(doc, ScriptHeader); ok {
		return strings.TrimSpace(rest)
	}
	return doc
}

func (r *Runner) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return utility.WriteFileAtomic(r.path(name), data, 0o644)
}

func (r *Runner) readText(name string) (string, error) {
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", plan.ErrMissingArtifact, r.path(name))
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
