package server

import (
	"fmt"
	"net/http"
	"time"

	"PantauSiKecil_AI/internal/metrics"
	"PantauSiKecil_AI/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	serviceName        = "PantauSiKecil AI Service"
	serviceDescription = "API untuk rekomendasi nutrisi, olahraga, dan chatbot medis"
	serviceVersion     = "1.0.0"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Validator = utility.NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: logRequest,
	}))

	// The mobile app and the backend both call us; any origin is allowed.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	e.Use(metrics.Middleware)

	e.GET("/", s.rootHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// AI endpoints. Authentication is the backend's job: the caller's bearer
	// token is forwarded as-is.
	e.POST("/chat", s.assistant.Chat)
	e.GET("/food-recommendation", s.assistant.FoodRecommendation)
	e.GET("/activity-recommendation", s.assistant.ActivityRecommendation)

	return e
}

func (s *Server) rootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":        serviceName,
		"description": serviceDescription,
		"version":     serviceVersion,
	})
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "up",
		"model":  s.cfg.GeminiModel,
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		"system": hostStats(),
	})
}

// hostStats samples CPU and memory load. Fields that cannot be read on the
// current platform are left out.
func hostStats() map[string]string {
	stats := map[string]string{}

	if v, err := mem.VirtualMemory(); err == nil {
		stats["ram_usage"] = fmt.Sprintf("%.1f%%", v.UsedPercent)
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		stats["cpu_load"] = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}
	return stats
}

// LoggerMiddleware tags every request with an X-Request-ID and installs a
// child logger both on the echo context and on the request context.
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
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}

func logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	logger := zerolog.Ctx(c.Request().Context())

	event := logger.Info()
	if v.Error != nil || v.Status >= http.StatusInternalServerError {
		event = logger.Error().Err(v.Error)
	}

	event.
		Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Msg("request")
	return nil
}
