package handlers

import (
	"fmt"
	"net/http"

	"energy-expansion/internal/api/models"
	"energy-expansion/internal/report"
	"energy-expansion/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultRunsLimit = 20
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
)

// RunHandler serves the run archive
type RunHandler struct {
	store store.Store
}

func NewRunHandler(st store.Store) *RunHandler {
	return &RunHandler{store: st}
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	var req models.ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultRunsLimit
	}
	runs, err := h.store.ListRuns(c.Request.Context(), req.Scenario, req.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	resp := models.RunsResponse{Runs: make([]models.RunResponse, 0, len(runs))}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, runResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, runResponse(run))
}

// ExportRun handles GET /api/v1/runs/:id/export?format=xlsx|pdf
func (h *RunHandler) ExportRun(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
		return
	}
	run, ok := h.load(c)
	if !ok {
		return
	}
	if run.Status != store.StatusSucceeded {
		respondError(c, http.StatusConflict, "RUN_NOT_SUCCEEDED", fmt.Sprintf("run %s is %s", run.ID, run.Status))
		return
	}

	summary := run.Summary()
	var (
		raw         []byte
		err         error
		name        string
		contentType string
	)
	switch req.Format {
	case "pdf":
		raw, err = report.BuildSummaryPDF(summary, run.FinishedAt)
		name, contentType = report.SummaryPDFFileName(run.Tag), contentTypePDF
	default:
		raw, err = report.BuildSummaryXLSX(summary)
		name, contentType = report.SummaryFileName(run.Tag), contentTypeXLSX
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "EXPORT_ERROR", err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, raw)
}

func (h *RunHandler) load(c *gin.Context) (store.Run, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a UUID")
		return store.Run{}, false
	}
	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		status, code := classify(err)
		if code == "RUN_FAILED" {
			status, code = http.StatusInternalServerError, "STORE_ERROR"
		}
		respondError(c, status, code, err.Error())
		return store.Run{}, false
	}
	return run, true
}

func runResponse(r store.Run) models.RunResponse {
	resp := models.RunResponse{
		ID:        r.ID.String(),
		Scenario:  r.Scenario,
		Tag:       r.Tag,
		Workbook:  r.Workbook,
		Status:    r.Status,
		Objective: r.Objective,
		StartedAt: r.StartedAt,
		Error:     r.Error,
	}
	if !r.FinishedAt.IsZero() {
		finished := r.FinishedAt
		resp.FinishedAt = &finished
	}
	byTable := map[string]int{}
	for _, e := range r.Entries {
		i, ok := byTable[e.Table]
		if !ok {
			i = len(resp.Tables)
			byTable[e.Table] = i
			resp.Tables = append(resp.Tables, models.SheetTable{Name: e.Table, Values: map[string]float64{}})
		}
		resp.Tables[i].Values[e.Key] = e.Value
		resp.Tables[i].Keys = append(resp.Tables[i].Keys, e.Key)
	}
	return resp
}
