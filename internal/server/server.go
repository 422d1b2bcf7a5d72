/*
Package server implements the application's network transport layer.
It builds the HTTP server, configures timeouts and holds the pipeline,
profile store and optional database behind the echo router.
*/
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"healthcast/internal/config"
	"healthcast/internal/database"
	"healthcast/internal/extractor"
	"healthcast/internal/pipeline"
	"healthcast/internal/profile"
	"healthcast/internal/storage"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// db is nil when profiles live in the JSON file store.
	db database.Service

	runner    *pipeline.Runner
	store     storage.ProfileStore
	extractor *extractor.Extractor

	// extractions memoizes profiles by request text and extras; nil disables it.
	extractions *lru.Cache[string, profile.FitnessProfile]

	// runMu serializes pipeline runs; they share one output directory.
	runMu sync.Mutex
}

// New wires a Server around runner. The runner's Store and Extractor are
// reused by the profile endpoints.
func New(cfg *config.Config, runner *pipeline.Runner, db database.Service) (*Server, error) {
	s := &Server{
		port:      cfg.App.Port,
		db:        db,
		runner:    runner,
		store:     runner.Store,
		extractor: runner.Extractor,
	}
	if s.port == 0 {
		s.port = 8080
	}
	if s.store == nil {
		s.store = storage.NewJSONFileStore(filepath.Join(runner.OutputDir, pipeline.ProfilesFile))
		runner.Store = s.store
	}
	if s.extractor == nil {
		s.extractor = extractor.New()
		runner.Extractor = s.extractor
	}

	if cfg.App.CacheSize > 0 {
		cache, err := lru.New[string, profile.FitnessProfile](cfg.App.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create extraction cache: %w", err)
		}
		s.extractions = cache
	}
	return s, nil
}

// NewServer returns a configured *http.Server with production-ready network
// timeouts. Pipeline runs wait on remote services, hence the long write
// timeout.
func NewServer(s *Server) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
}
