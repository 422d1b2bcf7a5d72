package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"healthcast/internal/app"
	"healthcast/internal/config"
	"healthcast/internal/server"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	flags := pflag.NewFlagSet("api", pflag.ExitOnError)
	flags.Int("port", 8080, "TCP port to listen on")
	flags.String("log-level", "info", "zerolog level")
	flags.String("output-dir", "outputs", "directory for generated artifacts")
	flags.String("model", "models/meal_model.json", "exported meal classifier")
	flags.String("workout-plan", "", "workout_plan.json to use instead of the templates")
	flags.String("database-url", "", "Postgres DSN; profiles go to a JSON file when empty")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	logger := config.SetupLogger(cfg)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize application")
	}
	defer a.Close()

	srv, err := server.New(cfg, a.Runner, a.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build server")
	}
	apiServer := server.NewServer(srv)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Str("addr", apiServer.Addr).Str("env", cfg.App.Env).Msg("healthcast api listening")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
