package models

// RunRequest is the optional body of POST /api/v1/scenarios/:name/run
type RunRequest struct {
	Hours int `json:"hours" binding:"min=0"` // 0 = scenario default
}

// ListRunsRequest is the query of GET /api/v1/runs
type ListRunsRequest struct {
	Scenario string `form:"scenario,omitempty"`
	Limit    int    `form:"limit,omitempty" binding:"min=0"` // default: 20
}

// ExportRequest is the query of GET /api/v1/runs/:id/export
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=xlsx pdf"` // default: xlsx
}
