/*
Package config loads runtime settings from the environment, an optional
.env file and command line flags, and sets up the global logger.
*/
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"healthcast/internal/geminiservice"
	"healthcast/internal/speech"
)

// Environment keys.
const (
	KeyPort          = "PORT"
	KeyAppEnv        = "APP_ENV"
	KeyLogLevel      = "LOG_LEVEL"
	KeyOutputDir     = "HEALTHCAST_OUTPUT_DIR"
	KeyModelPath     = "HEALTHCAST_MODEL_PATH"
	KeyWorkoutPlan   = "HEALTHCAST_WORKOUT_PLAN"
	KeyGeminiAPIKey  = "GEMINI_API_KEY"
	KeyGeminiModel   = "GEMINI_MODEL"
	KeyGeminiBaseURL = "GEMINI_BASE_URL"
	KeyGeminiTimeout = "GEMINI_TIMEOUT"
	KeyMurfAPIKey    = "MURF_API_KEY"
	KeyMurfBaseURL   = "MURF_BASE_URL"
	KeyMurfVoiceID   = "MURF_VOICE_ID"
	KeyMurfTimeout   = "MURF_TIMEOUT"
	KeyDatabaseURL   = "DATABASE_URL"
	KeyCacheSize     = "EXTRACT_CACHE_SIZE"
)

// FlagKeys maps command line flag names onto environment keys. A flag that
// was set on the command line wins over the environment.
var FlagKeys = map[string]string{
	"port":         KeyPort,
	"log-level":    KeyLogLevel,
	"output-dir":   KeyOutputDir,
	"model":        KeyModelPath,
	"workout-plan": KeyWorkoutPlan,
	"voice":        KeyMurfVoiceID,
	"database-url": KeyDatabaseURL,
}

type Config struct {
	App      AppConfig
	Paths    PathConfig
	Gemini   geminiservice.Config
	Murf     speech.Config
	Database DatabaseConfig
}

type AppConfig struct {
	Port      int
	Env       string
	LogLevel  string
	CacheSize int
}

type PathConfig struct {
	OutputDir string
	ModelPath string
	// WorkoutPlan is an optional workout_plan.json replacing the templates.
	WorkoutPlan string
}

type DatabaseConfig struct {
	// URL is empty when profiles live in the JSON file store.
	URL string
}

// Development reports whether APP_ENV selects the development profile.
func (c *Config) Development() bool {
	return strings.EqualFold(c.App.Env, "development")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyAppEnv, "development")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOutputDir, "outputs")
	v.SetDefault(KeyModelPath, "models/meal_model.json")
	v.SetDefault(KeyWorkoutPlan, "")
	v.SetDefault(KeyGeminiModel, geminiservice.DefaultModel)
	v.SetDefault(KeyGeminiBaseURL, geminiservice.DefaultBaseURL)
	v.SetDefault(KeyGeminiTimeout, geminiservice.DefaultTimeout.String())
	v.SetDefault(KeyMurfBaseURL, speech.DefaultBaseURL)
	v.SetDefault(KeyMurfVoiceID, speech.DefaultVoiceID)
	v.SetDefault(KeyMurfTimeout, speech.DefaultTimeout.String())
	v.SetDefault(KeyCacheSize, 256)
}

// Load reads the configuration. Values from envFiles (".env" when none are
// given) sit below real environment variables; a missing file is skipped.
// flags may be nil.
func Load(flags *pflag.FlagSet, envFiles ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		fileValues := make(map[string]any, len(values))
		for k, val := range values {
			fileValues[k] = val
		}
		if err := v.MergeConfigMap(fileValues); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	return &Config{
		App: AppConfig{
			Port:      v.GetInt(KeyPort),
			Env:       v.GetString(KeyAppEnv),
			LogLevel:  v.GetString(KeyLogLevel),
			CacheSize: v.GetInt(KeyCacheSize),
		},
		Paths: PathConfig{
			OutputDir:   v.GetString(KeyOutputDir),
			ModelPath:   v.GetString(KeyModelPath),
			WorkoutPlan: v.GetString(KeyWorkoutPlan),
		},
		Gemini: geminiservice.Config{
			APIKey:  v.GetString(KeyGeminiAPIKey),
			Model:   v.GetString(KeyGeminiModel),
			BaseURL: v.GetString(KeyGeminiBaseURL),
			Timeout: duration(v, KeyGeminiTimeout, geminiservice.DefaultTimeout),
		},
		Murf: speech.Config{
			APIKey:  v.GetString(KeyMurfAPIKey),
			BaseURL: v.GetString(KeyMurfBaseURL),
			VoiceID: v.GetString(KeyMurfVoiceID),
			Timeout: duration(v, KeyMurfTimeout, speech.DefaultTimeout),
		},
		Database: DatabaseConfig{URL: v.GetString(KeyDatabaseURL)},
	}, nil
}

// duration falls back when the value does not parse, so "90" and "abc" do
// not silently become zero timeouts.
func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// SetupLogger configures the global zerolog logger: a console writer in
// development, JSON on stderr otherwise. The configured logger is returned
// for clients that take an explicit *zerolog.Logger.
func SetupLogger(cfg *Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.App.LogLevel))
	if err != nil || cfg.App.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Development() {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if err != nil {
		log.Warn().Str("log_level", cfg.App.LogLevel).Msg("unknown log level, using info")
	}
	return &log.Logger
}
