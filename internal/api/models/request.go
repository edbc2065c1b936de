package models

import "storage-npv/internal/config"

// SimulateRequest is the request body for running a Monte Carlo simulation.
// The config payload mirrors the YAML config file shape; omitted sections
// fall back to the documented 250 MWh plant defaults.
type SimulateRequest struct {
	Config  config.Config   `json:"config"`
	Options SimulateOptions `json:"options,omitempty"`
}

// SimulateOptions controls how much of the ResultSet is returned.
type SimulateOptions struct {
	// IncludeNPVs returns the raw per-trial NPV collection.
	IncludeNPVs bool `json:"include_npvs,omitempty"`
	// IncludeKDE returns the density curve points alongside the summary.
	IncludeKDE bool `json:"include_kde,omitempty"`
	// IncludeTraces returns per-year rows per trial. Implies trace
	// retention during the run; expensive for large trial counts.
	IncludeTraces bool `json:"include_traces,omitempty"`
}

// CompareRequest runs the same simulation under several config variations.
type CompareRequest struct {
	BaseConfig config.Config `json:"base_config"`
	Variations []Variation   `json:"variations" binding:"required"`
}

// Variation overrides parts of the base config. Technology overrides use
// the same non-zero-field overlay as the YAML technology_file merge.
type Variation struct {
	Name       string                  `json:"name" binding:"required"`
	Technology config.TechnologyConfig `json:"technology,omitempty"`
	Seed       *int64                  `json:"seed,omitempty"`
}
