// Command healthcast runs the weekly plan pipeline from the terminal, either
// stage by stage or all at once. Every stage reads its upstream artifact from
// the output directory and writes its own.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"healthcast/internal/app"
	"healthcast/internal/config"
	"healthcast/internal/extractor"
	"healthcast/internal/pipeline"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, r *pipeline.Runner, fs *pflag.FlagSet, out outputs) error
}

// outputs carries command results on stdout and diagnostics on stderr.
type outputs struct {
	stdout io.Writer
	stderr io.Writer
}

var commands = map[string]command{
	"extract": {
		summary: "extract a fitness profile from text and store it",
		flags:   textFlags,
		run:     runExtract,
	},
	"meals": {
		summary: "predict the meal plan for the latest profile",
		run:     runMeals,
	},
	"workout": {
		summary: "build the workout plan for the latest profile",
		run:     runWorkout,
	},
	"render": {
		summary: "render weekly_plan.md from the stored profile and plans",
		run:     runRender,
	},
	"script": {
		summary: "write the motivational script for weekly_plan.md",
		run:     runScript,
	},
	"audio": {
		summary: "synthesize podcast.mp3 from the motivational script",
		run:     runAudio,
	},
	"run": {
		summary: "run every stage in order",
		flags:   textFlags,
		run:     runAll,
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return errUsage
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("output-dir", "outputs", "directory for generated artifacts")
	fs.String("model", "models/meal_model.json", "exported meal classifier")
	fs.String("workout-plan", "", "workout_plan.json to use instead of the templates")
	fs.String("voice", "", "Murf voice id")
	fs.String("log-level", "info", "zerolog level")
	fs.String("database-url", "", "Postgres DSN; profiles go to a JSON file when empty")
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.SetupLogger(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd.run(ctx, a.Runner, fs, outputs{stdout: stdout, stderr: stderr})
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: healthcast <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}

func textFlags(fs *pflag.FlagSet) {
	fs.StringP("text", "t", "", `self-description; "-" reads stdin`)
	fs.String("nutrition", "", "nutrition preferences")
	fs.String("schedule", "", "schedule preferences")
	fs.StringSlice("medical", nil, "medical conditions")
	fs.StringSlice("equipment", nil, "available equipment")
}

func readInput(fs *pflag.FlagSet) (string, extractor.Extras, error) {
	text, _ := fs.GetString("text")
	if text == "" && fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	}
	if text == "-" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", extractor.Extras{}, fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	var extras extractor.Extras
	extras.NutritionPreferences, _ = fs.GetString("nutrition")
	extras.SchedulePreferences, _ = fs.GetString("schedule")
	extras.MedicalConditions, _ = fs.GetStringSlice("medical")
	extras.EquipmentAvailable, _ = fs.GetStringSlice("equipment")
	return text, extras, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runExtract(ctx context.Context, r *pipeline.Runner, fs *pflag.FlagSet, out outputs) error {
	text, extras, err := readInput(fs)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return pipeline.ErrEmptyInput
	}
	p, err := r.ExtractProfile(ctx, text, extras)
	if err != nil {
		return err
	}
	for _, w := range p.Warnings {
		fmt.Fprintln(out.stderr, "warning:", w)
	}
	return printJSON(out.stdout, p)
}

func runMeals(ctx context.Context, r *pipeline.Runner, _ *pflag.FlagSet, out outputs) error {
	p, err := r.LatestProfile(ctx)
	if err != nil {
		return err
	}
	meals, fallback, err := r.MealPlan(ctx, p)
	if err != nil {
		return err
	}
	if fallback {
		fmt.Fprintln(out.stderr, "warning: meal prediction failed, using the default meal plan")
	}
	return printJSON(out.stdout, meals)
}

func runWorkout(ctx context.Context, r *pipeline.Runner, _ *pflag.FlagSet, out outputs) error {
	p, err := r.LatestProfile(ctx)
	if err != nil {
		return err
	}
	w, err := r.WorkoutPlan(ctx, p)
	if err != nil {
		return err
	}
	return printJSON(out.stdout, w)
}

func runRender(ctx context.Context, r *pipeline.Runner, _ *pflag.FlagSet, out outputs) error {
	p, err := r.LatestProfile(ctx)
	if err != nil {
		return err
	}
	meals, err := r.LoadMealPlan()
	if err != nil {
		return err
	}
	workouts, err := r.LoadWorkoutPlan()
	if err != nil {
		return err
	}
	md, err := r.RenderPlan(p, meals, workouts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out.stdout, md)
	return err
}

func runScript(ctx context.Context, r *pipeline.Runner, _ *pflag.FlagSet, out outputs) error {
	weekly, err := r.LoadWeeklyPlan()
	if err != nil {
		return err
	}
	script, err := r.MotivationalScript(ctx, weekly)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out.stdout, script)
	return err
}

func runAudio(ctx context.Context, r *pipeline.Runner, fs *pflag.FlagSet, out outputs) error {
	script, err := r.LoadScript()
	if err != nil {
		return err
	}
	voice, _ := fs.GetString("voice")
	audio, err := r.PodcastAudio(ctx, script, voice)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out.stdout, "wrote %d bytes of audio\n", len(audio))
	return err
}

func runAll(ctx context.Context, r *pipeline.Runner, fs *pflag.FlagSet, out outputs) error {
	text, extras, err := readInput(fs)
	if err != nil {
		return err
	}
	voice, _ := fs.GetString("voice")

	res, err := r.Run(ctx, pipeline.Input{Text: text, Extras: extras, VoiceID: voice}, func(ev pipeline.Event) {
		line := fmt.Sprintf("[%s] %-9s %s", ev.Stage, ev.Status, ev.Message)
		if ev.Artifact != "" {
			line += " -> " + ev.Artifact
		}
		fmt.Fprintln(out.stdout, line)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out.stdout, "run %s finished\n", res.RunID)
	return nil
}
