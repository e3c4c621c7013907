package bench

import (
	"syncbench/core/logger"
	"syncbench/core/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for benchmark runs.
type Handler struct {
	service    *Service
	paramsFile string
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, paramsFile string) *Handler {
	return &Handler{service: service, paramsFile: paramsFile}
}

// RegisterRoutes registers the bench routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/bench")
	group.Post("/runs", h.HandleRun)
	group.Post("/runs/file", h.HandleRunFile)
}

// runRequest is the POST /bench/runs body: parameter sets supplied inline.
type runRequest struct {
	ParameterSets []ParameterSet `json:"parameter_sets"`
}

// HandleRun executes parameter sets supplied in the request body.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	var req runRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.ParameterSets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parameter_sets is required"})
	}
	for i := range req.ParameterSets {
		if err := req.ParameterSets[i].Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	l.Info("Executing parameter sets", zap.Int("count", len(req.ParameterSets)))
	return h.respond(c, l, req.ParameterSets)
}

// HandleRunFile executes the configured parameter file.
func (h *Handler) HandleRunFile(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	sets, err := LoadParameterSets(h.paramsFile)
	if err != nil {
		l.Error("Failed to load parameter file", zap.String("file", h.paramsFile), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Executing parameter file",
		zap.String("file", h.paramsFile),
		zap.Int("count", len(sets)),
	)
	return h.respond(c, l, sets)
}

func (h *Handler) respond(c *fiber.Ctx, l *zap.Logger, sets []ParameterSet) error {
	reports, err := h.service.ExecuteAll(c.Context(), sets)
	if err != nil {
		l.Error("Benchmark finished with failures", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"reports": reports,
			"error":   metrics.CodeOf(err),
		})
	}
	return c.JSON(fiber.Map{"reports": reports})
}
