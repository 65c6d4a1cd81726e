package models

import (
	"energyhub/internal/build"
	"energyhub/internal/milp"
	"energyhub/internal/results"
)

// BuildModelResponse represents a built and lowered model
type BuildModelResponse struct {
	ID             string            `json:"id"`
	Transformation string            `json:"transformation"`
	Columns        int               `json:"columns"`
	Rows           int               `json:"rows"`
	Model          milp.Stats        `json:"model"`
	Units          []build.UnitStats `json:"units"`
}

// SolutionResponse is the outcome of applying an uploaded solution
type SolutionResponse struct {
	ID         string       `json:"id"`
	RunID      string       `json:"run_id,omitempty"`
	Matched    int          `json:"matched"`
	Feasible   bool         `json:"feasible"`
	Violations []string     `json:"violations,omitempty"`
	Units      []UnitResult `json:"units"`
}

// UnitResult contains the solved operation of one unit
type UnitResult struct {
	Node       string              `json:"node"`
	Technology string              `json:"technology"`
	Carrier    string              `json:"carrier"`
	Summary    results.Summary     `json:"summary"`
	Ledger     []results.LedgerRow `json:"ledger,omitempty"`
}

// TechnologyInfo represents information about a technology data file
type TechnologyInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	TecType string  `json:"tec_type"`
	File    string  `json:"file"`
	SizeMax float64 `json:"size_max"`
	Carrier string  `json:"carrier,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
