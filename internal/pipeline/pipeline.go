/*
Package pipeline runs the weekly plan workflow stage by stage: extract the
profile, predict meals, pick workouts, render the plan, write the motivational
script and synthesize the podcast. Each stage persists its artifact in the
output directory and reports progress through an Observer.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"healthcast/internal/extractor"
	"healthcast/internal/plan"
	"healthcast/internal/profile"
	"healthcast/internal/storage"
	"healthcast/internal/workout"
)

type Stage string

const (
	StageExtract  Stage = "extract_profile"
	StageMeals    Stage = "meal_plan"
	StageWorkouts Stage = "workout_plan"
	StageRender   Stage = "render_plan"
	StageScript   Stage = "motivational_script"
	StageAudio    Stage = "podcast_audio"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageExtract, StageMeals, StageWorkouts, StageRender, StageScript, StageAudio}

// ErrEmptyInput rejects a run without any self-description.
var ErrEmptyInput = errors.New("please write something about yourself first")

// StageError ties a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusFallback marks a stage that finished on its documented default.
	StatusFallback Status = "fallback"
)

// Event is one progress notice of a run.
type Event struct {
	RunID    string    `json:"run_id"`
	Stage    Stage     `json:"stage"`
	Status   Status    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Artifact string    `json:"artifact,omitempty"`
	Time     time.Time `json:"time"`
}

// Observer receives events synchronously, in stage order.
type Observer func(Event)

// MealPredictor is satisfied by *nutrition.Predictor.
type MealPredictor interface {
	Predict(p profile.FitnessProfile) (plan.MealPlan, error)
}

// ScriptWriter is satisfied by *geminiservice.Client.
type ScriptWriter interface {
	GenerateMotivationalScript(ctx context.Context, weeklyPlan string) (string, error)
}

// Synthesizer is satisfied by *speech.Client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Runner wires the stage collaborators. A nil Predictor means the meal model
// could not be loaded, which fails the meal stage.
type Runner struct {
	OutputDir string
	Extractor *extractor.Extractor
	Store     storage.ProfileStore
	Predictor MealPredictor
	Workouts  workout.Planner
	Scripts   ScriptWriter
	Speech    Synthesizer
	VoiceID   string
}

// Input is one run request.
type Input struct {
	Text    string           `json:"text"`
	Extras  extractor.Extras `json:"extras"`
	VoiceID string           `json:"voice_id,omitempty"`
}

// Result summarizes a finished run.
type Result struct {
	RunID               string                 `json:"run_id"`
	Profile             profile.FitnessProfile `json:"profile"`
	Warnings            []string               `json:"warnings,omitempty"`
	MealPlan            plan.MealPlan          `json:"meal_plan"`
	UsedDefaultMealPlan bool                   `json:"used_default_meal_plan"`
	WorkoutPlan         plan.WorkoutPlan       `json:"workout_plan"`
	WeeklyPlan          string                 `json:"weekly_plan"`
	Script              string                 `json:"script"`
	AudioBytes          int                    `json:"audio_bytes"`
	Artifacts           map[Stage]string       `json:"artifacts"`
}

// Run executes every stage in order and stops at the first failing one. The
// partial result is returned alongside the *StageError.
func (r *Runner) Run(ctx context.Context, in Input, observe Observer) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Artifacts: make(map[Stage]string)}
	logger := log.With().Str("run_id", res.RunID).Logger()
	emit := func(stage Stage, status Status, msg, artifact string) {
		ev := Event{RunID: res.RunID, Stage: stage, Status: status, Message: msg, Artifact: artifact, Time: time.Now().UTC()}
		logger.Info().Str("stage", string(stage)).Str("status", string(status)).Msg(msg)
		if observe != nil {
			observe(ev)
		}
	}
	fail := func(stage Stage, err error) (*Result, error) {
		emit(stage, StatusFailed, err.Error(), "")
		var se *StageError
		if errors.As(err, &se) {
			return res, err
		}
		return res, &StageError{Stage: stage, Err: err}
	}

	emit(StageExtract, StatusStarted, "extracting fitness profile", "")
	if strings.TrimSpace(in.Text) == "" {
		return fail(StageExtract, ErrEmptyInput)
	}
	p, err := r.ExtractProfile(ctx, in.Text, in.Extras)
	if err != nil {
		return fail(StageExtract, err)
	}
	res.Profile, res.Warnings = p, p.Warnings
	artifact := r.profilesArtifact()
	if artifact != "" {
		res.Artifacts[StageExtract] = artifact
	}
	emit(StageExtract, StatusCompleted, "fitness profile generated", artifact)

	emit(StageMeals, StatusStarted, "predicting meal plan", "")
	meals, fallback, err := r.MealPlan(ctx, p)
	if err != nil {
		return fail(StageMeals, err)
	}
	res.MealPlan, res.UsedDefaultMealPlan = meals, fallback
	res.Artifacts[StageMeals] = r.path(MealPlanFile)
	if fallback {
		emit(StageMeals, StatusFallback, "meal prediction failed, using the default meal plan", res.Artifacts[StageMeals])
	} else {
		emit(StageMeals, StatusCompleted, "meal plan generated", res.Artifacts[StageMeals])
	}

	emit(StageWorkouts, StatusStarted, "building workout plan", "")
	workouts, err := r.WorkoutPlan(ctx, p)
	if err != nil {
		return fail(StageWorkouts, err)
	}
	res.WorkoutPlan = workouts
	res.Artifacts[StageWorkouts] = r.path(WorkoutPlanFile)
	emit(StageWorkouts, StatusCompleted, "workout plan generated", res.Artifacts[StageWorkouts])

	emit(StageRender, StatusStarted, "rendering weekly plan", "")
	weekly, err := r.RenderPlan(p, meals, workouts)
	if err != nil {
		return fail(StageRender, err)
	}
	res.WeeklyPlan = weekly
	res.Artifacts[StageRender] = r.path(WeeklyPlanFile)
	emit(StageRender, StatusCompleted, "weekly plan generated", res.Artifacts[StageRender])

	emit(StageScript, StatusStarted, "writing motivational script", "")
	script, err := r.MotivationalScript(ctx, weekly)
	if err != nil {
		return fail(StageScript, err)
	}
	res.Script = script
	res.Artifacts[StageScript] = r.path(ScriptFile)
	emit(StageScript, StatusCompleted, "motivational script generated", res.Artifacts[StageScript])

	emit(StageAudio, StatusStarted, "synthesizing podcast audio", "")
	audio, err := r.PodcastAudio(ctx, script, in.VoiceID)
	if err != nil {
		return fail(StageAudio, err)
	}
	res.AudioBytes = len(audio)
	res.Artifacts[StageAudio] = r.path(AudioFile)
	emit(StageAudio, StatusCompleted, "podcast audio generated", res.Artifacts[StageAudio])

	return res, nil
}
