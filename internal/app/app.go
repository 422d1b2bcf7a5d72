// Package app builds the pipeline runner and its collaborators from config.
package app

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"healthcast/internal/config"
	"healthcast/internal/database"
	"healthcast/internal/extractor"
	"healthcast/internal/geminiservice"
	"healthcast/internal/nutrition"
	"healthcast/internal/pipeline"
	"healthcast/internal/speech"
	"healthcast/internal/storage"
	"healthcast/internal/workout"
)

// App owns the runner and the optional database connection.
type App struct {
	Runner *pipeline.Runner
	// DB is nil unless DATABASE_URL is set.
	DB database.Service
}

// New wires every collaborator. A meal model that fails to load is logged and
// left unset, so only the meal stage fails. A configured database that cannot
// be reached is an error.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	runner := &pipeline.Runner{
		OutputDir: cfg.Paths.OutputDir,
		Extractor: extractor.New(),
		Workouts:  workout.TemplatePlanner{},
		Scripts:   geminiservice.NewClient(cfg.Gemini, logger),
		Speech:    speech.NewClient(cfg.Murf, logger),
		VoiceID:   cfg.Murf.VoiceID,
	}

	if cfg.Paths.WorkoutPlan != "" {
		runner.Workouts = workout.FileSource{Path: cfg.Paths.WorkoutPlan}
	}

	predictor, err := nutrition.LoadPredictor(cfg.Paths.ModelPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Paths.ModelPath).Msg("Meal model unavailable")
	} else {
		runner.Predictor = predictor
	}

	a := &App{Runner: runner}
	if cfg.Database.URL != "" {
		db, err := database.NewService(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		runner.Store = db.Profiles()
	} else {
		runner.Store = storage.NewJSONFileStore(filepath.Join(cfg.Paths.OutputDir, pipeline.ProfilesFile))
	}
	return a, nil
}

// Close releases the database pool when one is open.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
