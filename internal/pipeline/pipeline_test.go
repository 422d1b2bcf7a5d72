package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcast/internal/extractor"
	"healthcast/internal/nutrition"
	"healthcast/internal/plan"
	"healthcast/internal/profile"
	"healthcast/internal/storage"
)

type fakePredictor struct {
	err error
}

func (f fakePredictor) Predict(p profile.FitnessProfile) (plan.MealPlan, error) {
	if f.err != nil {
		return plan.MealPlan{}, f.err
	}
	return plan.MealPlan{Meals: []plan.MealSlot{{
		Meal:           "breakfast",
		Recommended:    "Eggs",
		MainConfidence: "55.00%",
		Foods:          nutrition.Expand("Eggs"),
	}}}, nil
}

type fakeScripts struct {
	got string
	err error
}

func (f *fakeScripts) GenerateMotivationalScript(_ context.Context, weeklyPlan string) (string, error) {
	f.got = weeklyPlan
	return "Rise and shine, champion!", f.err
}

type fakeSpeech struct {
	text, voice string
	err         error
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, voiceID string) ([]byte, error) {
	f.text, f.voice = text, voiceID
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3-bytes"), nil
}

func newRunner(t *testing.T) (*Runner, *fakeScripts, *fakeSpeech) {
	t.Helper()
	dir := t.TempDir()
	scripts, voice := &fakeScripts{}, &fakeSpeech{}
	return &Runner{
		OutputDir: dir,
		Store:     storage.NewJSONFileStore(filepath.Join(dir, ProfilesFile)),
		Predictor: fakePredictor{},
		Scripts:   scripts,
		Speech:    voice,
		VoiceID:   "en-US-charles",
	}, scripts, voice
}

type memoryStore struct {
	profiles []profile.FitnessProfile
}

func (m *memoryStore) Append(_ context.Context, p profile.FitnessProfile) error {
	m.profiles = append(m.profiles, p)
	return nil
}

func (m *memoryStore) Latest(context.Context) (profile.FitnessProfile, error) {
	if len(m.profiles) == 0 {
		return profile.FitnessProfile{}, storage.ErrNoProfiles
	}
	return m.profiles[len(m.profiles)-1], nil
}

func readArtifact(t *testing.T, r *Runner, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.OutputDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRunAllStages(t *testing.T) {
	r, scripts, voice := newRunner(t)

	var events []Event
	res, err := r.Run(context.Background(), Input{
		Text: "I am a 28 year old female, 5'6\" tall, 140 lbs, beginner, want to lose weight",
	}, func(ev Event) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, 28, *res.Profile.Age)
	assert.False(t, res.UsedDefaultMealPlan)
	assert.Equal(t, len("mp3-bytes"), res.AudioBytes)
	assert.Len(t, res.Artifacts, len(Stages))

	// every stage starts then completes, in order
	require.Len(t, events, 2*len(Stages))
	for i, stage := range Stages {
		assert.Equal(t, stage, events[2*i].Stage)
		assert.Equal(t, StatusStarted, events[2*i].Status)
		assert.Equal(t, StatusCompleted, events[2*i+1].Status)
		assert.Equal(t, res.RunID, events[2*i+1].RunID)
	}

	weekly := readArtifact(t, r, WeeklyPlanFile)
	assert.Equal(t, res.WeeklyPlan, weekly)
	assert.Contains(t, weekly, "Hello female aged 28!")
	assert.Contains(t, weekly, "**Recommended:** Eggs (confidence 55.00%)")
	assert.Equal(t, weekly, scripts.got)

	assert.Equal(t, "# Motivational Script\n\nRise and shine, champion!\n", readArtifact(t, r, ScriptFile))
	assert.Equal(t, "Rise and shine, champion!", voice.text)
	assert.Equal(t, "en-US-charles", voice.voice)
	assert.Equal(t, "mp3-bytes", readArtifact(t, r, AudioFile))

	_, err = plan.LoadMealPlan(filepath.Join(r.OutputDir, MealPlanFile))
	require.NoError(t, err)
	_, err = plan.LoadWorkoutPlan(filepath.Join(r.OutputDir, WorkoutPlanFile))
	require.NoError(t, err)
}

func TestRunWithNonFileStoreReportsNoProfilesArtifact(t *testing.T) {
	r, _, _ := newRunner(t)
	store := &memoryStore{}
	r.Store = store

	var events []Event
	res, err := r.Run(context.Background(), Input{
		Text: "I am a 40 year old male, 90kg, 175cm, want to lose weight",
	}, func(ev Event) { events = append(events, ev) })
	require.NoError(t, err)

	require.Len(t, store.profiles, 1)
	assert.NotContains(t, res.Artifacts, StageExtract)
	assert.Len(t, res.Artifacts, len(Stages)-1)
	assert.NoFileExists(t, filepath.Join(r.OutputDir, ProfilesFile))

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, StageExtract, events[1].Stage)
	assert.Equal(t, StatusCompleted, events[1].Status)
	assert.Empty(t, events[1].Artifact)
}

func TestRunFallsBackToDefaultMealPlan(t *testing.T) {
	r, _, _ := newRunner(t)
	r.Predictor = fakePredictor{err: nutrition.ErrMissingFeatures}

	var fallback []Event
	res, err := r.Run(context.Background(), Input{Text: "I am a beginner"}, func(ev Event) {
		if ev.Status == StatusFallback {
			fallback = append(fallback, ev)
		}
	})
	require.NoError(t, err)

	assert.True(t, res.UsedDefaultMealPlan)
	assert.Equal(t, nutrition.DefaultMealPlan(), res.MealPlan)
	require.Len(t, fallback, 1)
	assert.Equal(t, StageMeals, fallback[0].Stage)
	assert.Contains(t, res.WeeklyPlan, nutrition.DefaultBreakfast)
}

func TestRunWithoutModelFails(t *testing.T) {
	r, _, _ := newRunner(t)
	r.Predictor = nil

	_, err := r.Run(context.Background(), Input{Text: "I am 30 years old"}, nil)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageMeals, se.Stage)
	assert.ErrorIs(t, err, nutrition.ErrModelUnavailable)
}

func TestRunStopsOnRemoteFailure(t *testing.T) {
	r, scripts, voice := newRunner(t)
	scripts.err = errors.New("gemini down")

	var last Event
	res, err := r.Run(context.Background(), Input{Text: "I am 30 years old"}, func(ev Event) { last = ev })

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageScript, se.Stage)
	assert.Equal(t, StatusFailed, last.Status)
	assert.NotEmpty(t, res.WeeklyPlan, "partial result is kept")
	assert.Empty(t, voice.text, "audio stage never ran")
	assert.NoFileExists(t, filepath.Join(r.OutputDir, ScriptFile))
}

func TestRunRejectsEmptyText(t *testing.T) {
	r, _, _ := newRunner(t)

	_, err := r.Run(context.Background(), Input{Text: "   "}, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageExtract, se.Stage)
}

func TestStagesReadUpstreamArtifacts(t *testing.T) {
	r, _, voice := newRunner(t)
	ctx := context.Background()

	_, err := r.LoadMealPlan()
	assert.ErrorIs(t, err, plan.ErrMissingArtifact)
	_, err = r.LoadWeeklyPlan()
	assert.ErrorIs(t, err, plan.ErrMissingArtifact)
	_, err = r.LatestProfile(ctx)
	assert.ErrorIs(t, err, storage.ErrNoProfiles)

	_, err = r.ExtractProfile(ctx, "I am male, 80kg, 180cm", extractor.Extras{})
	require.NoError(t, err)
	p, err := r.LatestProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24.7, *p.BMI)

	_, err = r.MotivationalScript(ctx, "plan")
	require.NoError(t, err)
	script, err := r.LoadScript()
	require.NoError(t, err)
	assert.Equal(t, "Rise and shine, champion!", script)

	_, err = r.PodcastAudio(ctx, "# Motivational Script\n\nGo!", "en-UK-hazel")
	require.NoError(t, err)
	assert.Equal(t, "Go!", voice.text)
	assert.Equal(t, "en-UK-hazel", voice.voice)
}

func TestStripScriptHeader(t *testing.T) {
	assert.Equal(t, "Body text", StripScriptHeader("# Motivational Script\n\nBody text\n"))
	assert.Equal(t, "No header here", StripScriptHeader("No header here"))
}
