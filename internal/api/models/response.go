package models

import "time"

// ScenarioInfo describes a configured scenario
type ScenarioInfo struct {
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Workbook    string `json:"workbook"`
	Hours       int    `json:"hours,omitempty"`
	Description string `json:"description,omitempty"`
}

// ScenariosResponse lists the configured scenarios
type ScenariosResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
	Solver    string         `json:"solver"`
}

// RunResponse represents one archived or just finished run
type RunResponse struct {
	ID         string       `json:"id"`
	Scenario   string       `json:"scenario"`
	Tag        string       `json:"tag"`
	Workbook   string       `json:"workbook"`
	Status     string       `json:"status"`
	Objective  float64      `json:"objective"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Error      string       `json:"error,omitempty"`
	Tables     []SheetTable `json:"tables,omitempty"`
	Files      []string     `json:"files,omitempty"`
}

// SheetTable is one summary table (one sheet of the overview workbook)
type SheetTable struct {
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
	Keys   []string           `json:"keys"` // report order of Values
}

// RunsResponse lists runs, newest first
type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
