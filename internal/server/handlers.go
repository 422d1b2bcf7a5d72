package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"healthcast/internal/extractor"
	"healthcast/internal/geminiservice"
	"healthcast/internal/nutrition"
	"healthcast/internal/pipeline"
	"healthcast/internal/plan"
	"healthcast/internal/profile"
	"healthcast/internal/speech"
	"healthcast/internal/storage"
	"healthcast/internal/utility"
)

type ExtractRequest struct {
	Text   string           `json:"text" validate:"required"`
	Extras extractor.Extras `json:"extras"`
}

type ExtractResponse struct {
	Profile  profile.FitnessProfile `json:"profile"`
	Warnings []string               `json:"warnings,omitempty"`
}

type BatchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=100"`
}

type RenderRequest struct {
	Profile     profile.FitnessProfile `json:"profile"`
	MealPlan    plan.MealPlan          `json:"meal_plan"`
	WorkoutPlan plan.WorkoutPlan       `json:"workout_plan"`
}

// wsMessage is one frame of the pipeline websocket.
type wsMessage struct {
	Type   string           `json:"type"` // event | result | error
	Event  *pipeline.Event  `json:"event,omitempty"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Stage  pipeline.Stage   `json:"stage,omitempty"`
}

func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}

// bindAndValidate answers 400 for undecodable bodies and 422 for invalid ones.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var validationErrs validator.ValidationErrors
	var geminiErr *geminiservice.HTTPError
	var murfErr *speech.HTTPError

	switch {
	case errors.Is(err, plan.ErrSchemaMismatch), errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, plan.ErrMissingArtifact), errors.Is(err, storage.ErrNoProfiles):
		return http.StatusNotFound
	case errors.Is(err, nutrition.ErrModelUnavailable),
		errors.Is(err, geminiservice.ErrNotConfigured),
		errors.Is(err, geminiservice.ErrEmptyResponse),
		errors.Is(err, geminiservice.ErrUnavailable),
		errors.Is(err, speech.ErrNotConfigured),
		errors.Is(err, speech.ErrNoAudio),
		errors.Is(err, speech.ErrUnavailable),
		errors.Is(err, speech.ErrAudioTooLarge),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &geminiErr),
		errors.As(err, &murfErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) map[string]any {
	body := map[string]any{"error": err.Error()}
	var se *pipeline.StageError
	if errors.As(err, &se) {
		body["stage"] = se.Stage
	}
	return body
}

// extractProfile returns the memoized profile for the request when present.
func (s *Server) extractProfile(req ExtractRequest) profile.FitnessProfile {
	if s.extractions == nil {
		return s.extractor.ExtractWith(req.Text, req.Extras)
	}

	key, _ := json.Marshal(req)
	if p, ok := s.extractions.Get(string(key)); ok {
		return p
	}
	p := s.extractor.ExtractWith(req.Text, req.Extras)
	s.extractions.Add(string(key), p)
	return p
}

// extractProfileHandler extracts a profile from free text and persists it.
func (s *Server) extractProfileHandler(c echo.Context) error {
	logger := requestLogger(c)

	var req ExtractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p := s.extractProfile(req)
	if err := s.store.Append(c.Request().Context(), p); err != nil {
		logger.Error().Err(err).Msg("Failed to store profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store profile"})
	}

	logger.Info().Int("warnings", len(p.Warnings)).Msg("Profile extracted")
	return c.JSON(http.StatusOK, ExtractResponse{Profile: p, Warnings: p.Warnings})
}

// extractBatchHandler extracts many texts at once without persisting them.
func (s *Server) extractBatchHandler(c echo.Context) error {
	var req BatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profiles, err := s.extractor.ExtractBatch(c.Request().Context(), req.Texts)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"profiles": profiles})
}

func (s *Server) latestProfileHandler(c echo.Context) error {
	p, err := s.store.Latest(c.Request().Context())
	if err != nil {
		if !errors.Is(err, storage.ErrNoProfiles) {
			requestLogger(c).Error().Err(err).Msg("Failed to read latest profile")
		}
		return c.JSON(errorStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, ExtractResponse{Profile: p, Warnings: p.Warnings})
}

// renderPlanHandler renders the weekly plan markdown from posted documents.
func (s *Server) renderPlanHandler(c echo.Context) error {
	// Decoded directly so schema errors from the plan types keep their identity.
	var req RenderRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, plan.ErrSchemaMismatch) {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	md, err := plan.Render(profile.New(req.Profile), req.MealPlan, req.WorkoutPlan)
	if err != nil {
		return c.JSON(errorStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, map[string]string{"markdown": md})
}

// runPipelineHandler runs every stage and returns the result summary. A failed
// run answers with the failing stage and the partial result.
func (s *Server) runPipelineHandler(c echo.Context) error {
	logger := requestLogger(c)

	var in pipeline.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, err := s.runner.Run(c.Request().Context(), in, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Pipeline run failed")
		body := errorBody(err)
		body["result"] = res
		return c.JSON(errorStatus(err), body)
	}
	return c.JSON(http.StatusOK, res)
}

// pipelineWebsocketHandler reads one run request from the socket, streams the
// stage events of the run and closes with the result or the error.
func (s *Server) pipelineWebsocketHandler(c echo.Context) error {
	logger := requestLogger(c)

	conn, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}
	defer conn.Close()

	var in pipeline.Input
	if err := conn.ReadJSON(&in); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: "Invalid run request"})
		return nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	var runID string
	res, err := s.runner.Run(c.Request().Context(), in, func(ev pipeline.Event) {
		if runID == "" {
			runID = ev.RunID
			utility.RegisterClient(runID, conn)
		}
		utility.SendToRun(runID, wsMessage{Type: "event", Event: &ev})
	})

	msg := wsMessage{Type: "result", Result: res}
	if err != nil {
		msg = wsMessage{Type: "error", Error: err.Error(), Result: res}
		var se *pipeline.StageError
		if errors.As(err, &se) {
			msg.Stage = se.Stage
		}
	}
	if runID == "" || !utility.SendToRun(runID, msg) {
		_ = conn.WriteJSON(msg)
	}
	utility.UnregisterClient(runID)
	return nil
}

// artifactHandler serves one of the generated files by name.
func (s *Server) artifactHandler(c echo.Context) error {
	name := c.Param("name")
	if !slices.Contains(pipeline.ArtifactFiles, name) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown artifact"})
	}

	path := filepath.Join(s.runner.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Artifact not generated yet"})
	}
	return c.File(path)
}
