package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"healthcast/internal/utility"
)

// StartTime is reported as the process start by /health.
var StartTime = time.Now()

// requestValidator plugs go-playground validation into echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)

	// Profile extraction
	e.POST("/profile/extract", s.extractProfileHandler)
	e.POST("/profile/extract/batch", s.extractBatchHandler)
	e.GET("/profile/latest", s.latestProfileHandler)

	// Plans and pipeline
	e.POST("/plan/render", s.renderPlanHandler)
	e.POST("/pipeline/run", s.runPipelineHandler)
	e.GET("/pipeline/ws", s.pipelineWebsocketHandler)
	e.GET("/artifacts/:name", s.artifactHandler)

	return e
}

// healthHandler reports process, host and database health.
func (s *Server) healthHandler(c echo.Context) error {
	body := map[string]any{
		"status": "online",
		"runtime": map[string]any{
			"uptime":         time.Since(StartTime).Round(time.Second).String(),
			"start_time":     StartTime.Format(time.RFC3339),
			"ws_connections": utility.ConnectedRuns(),
		},
	}

	if hInfo, err := host.Info(); err == nil {
		runtime := body["runtime"].(map[string]any)
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["arch"] = hInfo.KernelArch
		runtime["hostname"] = hInfo.Hostname
	}
	// Zero interval compares against the previous call and never blocks.
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		body["cpu"] = map[string]any{"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0])}
	}
	if v, err := mem.VirtualMemory(); err == nil {
		body["memory"] = map[string]any{
			"total_gb":     gigabytes(v.Total),
			"used_gb":      gigabytes(v.Used),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      gigabytes(v.Free),
		}
	}
	if d, err := disk.Usage("/"); err == nil {
		body["disk"] = map[string]any{
			"total_gb":     gigabytes(d.Total),
			"used_gb":      gigabytes(d.Used),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		}
	}

	if s.db != nil {
		dbHealth := s.db.Health()
		body["database"] = dbHealth
		if dbHealth["status"] != "up" {
			body["status"] = "degraded"
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return c.JSON(http.StatusOK, body)
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}

// LoggerMiddleware tags every request with an X-Request-ID and stores a
// request-scoped logger under "logger".
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}
