package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storage-npv/internal/analysis"
	"storage-npv/internal/api/models"
	"storage-npv/internal/config"
	"storage-npv/internal/model"
	"storage-npv/internal/sim"
)

// SimulateHandler runs Monte Carlo simulations on request.
type SimulateHandler struct {
	log *zap.Logger
}

func NewSimulateHandler(log *zap.Logger) *SimulateHandler {
	return &SimulateHandler{log: log}
}

// RunSimulation handles POST /api/v1/simulate.
func (h *SimulateHandler) RunSimulation(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	cfg := withDefaults(req.Config)
	if req.Options.IncludeTraces {
		cfg.Simulation.KeepTraces = true
	}

	rs, summary, ok := h.run(c, cfg)
	if !ok {
		return
	}

	resp := models.SimulateResponse{
		Status:  "completed",
		Trials:  rs.Trials,
		Skipped: rs.Skipped,
		Seed:    rs.Seed,
		Summary: *summary,
	}
	if !req.Options.IncludeKDE {
		resp.Summary.KDE = analysis.KDECurve{}
	}
	if req.Options.IncludeNPVs {
		resp.NPVs = rs.NPVs
	}
	if req.Options.IncludeTraces {
		resp.Traces = rs.Traces
	}
	c.JSON(http.StatusOK, resp)
}

// CompareSimulations handles POST /api/v1/simulate/compare. Invalid
// variations are skipped rather than failing the whole comparison.
func (h *SimulateHandler) CompareSimulations(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	base := withDefaults(req.BaseConfig)
	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, v := range req.Variations {
		cfg := base
		cfg.Technology = config.MergeTechnology(cfg.Technology, v.Technology)
		if v.Seed != nil {
			cfg.Simulation.Seed = *v.Seed
		}

		rs, err := h.runQuiet(c.Request.Context(), cfg)
		if err != nil {
			h.log.Warn("comparison variation skipped", zap.String("name", v.Name), zap.Error(err))
			continue
		}
		summary, err := analysis.Summarize(rs.NPVs)
		if err != nil {
			h.log.Warn("comparison variation skipped", zap.String("name", v.Name), zap.Error(err))
			continue
		}
		summary.KDE = analysis.KDECurve{}
		comparison = append(comparison, models.ComparisonResult{Name: v.Name, Summary: *summary})
	}

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

func (h *SimulateHandler) run(c *gin.Context, cfg config.Config) (*model.ResultSet, *analysis.Summary, bool) {
	rs, err := h.runQuiet(c.Request.Context(), cfg)
	if err != nil {
		writeEngineError(c, err)
		return nil, nil, false
	}
	summary, err := analysis.Summarize(rs.NPVs)
	if err != nil {
		writeEngineError(c, err)
		return nil, nil, false
	}
	return rs, summary, true
}

func (h *SimulateHandler) runQuiet(ctx context.Context, cfg config.Config) (*model.ResultSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	driver, err := sim.NewDriver(cfg.ToPriceParams(), cfg.ToTechParams(), cfg.ToEconomicParams(),
		cfg.ToSimulationParams(), h.log)
	if err != nil {
		return nil, err
	}
	return driver.Run(ctx)
}

// withDefaults fills omitted config sections with the documented baseline,
// so API callers can override only what they care about.
func withDefaults(c config.Config) config.Config {
	def := config.Default()
	if c.Technology.CapacityKWh == 0 && c.TechnologyFile == "" {
		c.Technology = def.Technology
	}
	if c.Prices.Peak.Kind == "" {
		c.Prices = def.Prices
	}
	if c.Simulation.Trials == 0 {
		c.Simulation = def.Simulation
	}
	if c.Economics.FixedCapitalInvestment == 0 && c.Economics.StorageCostPerKWh == 0 {
		c.Economics = def.Economics
	}
	if c.Economics.PaymentsPerYear == 0 {
		c.Economics.PaymentsPerYear = 12
	}
	return c
}

// writeEngineError maps the engine's error taxonomy onto HTTP codes.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_PARAMETER", Message: err.Error()},
		})
	case errors.Is(err, model.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INSUFFICIENT_DATA", Message: err.Error()},
		})
	case errors.Is(err, model.ErrNumericOverflow):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NUMERIC_OVERFLOW", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "SIMULATION_ERROR", Message: err.Error()},
		})
	}
}
