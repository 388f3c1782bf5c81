package handlers

import (
	"net/http"
	"sync"

	"energy-expansion/internal/api/models"
	"energy-expansion/internal/config"
	"energy-expansion/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// ScenarioHandler lists configured scenarios and runs them. Runs are
// serialized: a second run while one is solving gets 409.
type ScenarioHandler struct {
	cfg    *config.Config
	runner *pipeline.Runner
	mu     sync.Mutex
}

func NewScenarioHandler(cfg *config.Config, runner *pipeline.Runner) *ScenarioHandler {
	return &ScenarioHandler{cfg: cfg, runner: runner}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	resp := models.ScenariosResponse{
		Scenarios: make([]models.ScenarioInfo, 0, len(h.cfg.Scenarios)),
		Solver:    h.cfg.Solver.Name,
	}
	for _, s := range h.cfg.Scenarios {
		resp.Scenarios = append(resp.Scenarios, models.ScenarioInfo{
			Name:        s.Name,
			Tag:         s.Tag,
			Workbook:    s.Workbook,
			Hours:       s.Hours,
			Description: s.Description,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// RunScenario handles POST /api/v1/scenarios/:name/run
func (h *ScenarioHandler) RunScenario(c *gin.Context) {
	sc, ok := h.cfg.Scenario(c.Param("name"))
	if !ok {
		respondError(c, http.StatusNotFound, "SCENARIO_NOT_FOUND", "unknown scenario: "+c.Param("name"))
		return
	}

	var req models.RunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}
	if req.Hours > 0 {
		sc.Hours = req.Hours
	}

	if !h.mu.TryLock() {
		respondError(c, http.StatusConflict, "RUN_IN_PROGRESS", "another scenario is being solved")
		return
	}
	defer h.mu.Unlock()

	out, err := h.runner.Run(c.Request.Context(), sc)
	if err != nil {
		status, code := classify(err)
		respondError(c, status, code, err.Error())
		return
	}

	resp := runResponse(out.Run)
	resp.Files = out.Files
	c.JSON(http.StatusOK, resp)
}
