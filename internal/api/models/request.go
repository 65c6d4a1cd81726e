package models

import "energyhub/internal/config"

// BuildModelRequest is the request body for building a model
type BuildModelRequest struct {
	// Nodes the technology is placed at; defaults to a single "node".
	Nodes []string `json:"nodes,omitempty"`
	// TechnologyFile names a file in the technology directory (without
	// extension). Technology fields override it.
	TechnologyFile string                  `json:"technology_file,omitempty"`
	Technology     config.TechnologyConfig `json:"technology"`
	// Climate holds the named input series, one value per full timestep.
	Climate map[string][]float64 `json:"climate" binding:"required"`
	Model   config.ModelConfig   `json:"model"`
}

// SolutionOptions are the query parameters of a solution upload
type SolutionOptions struct {
	IncludeLedger bool    `form:"include_ledger"`
	Persist       bool    `form:"persist"`
	Tolerance     float64 `form:"tolerance"`
}
