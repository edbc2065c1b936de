package models

import (
	"storage-npv/internal/analysis"
	"storage-npv/internal/model"
)

// SimulateResponse is the response from a simulation run.
type SimulateResponse struct {
	Status  string           `json:"status"`
	Trials  int              `json:"trials"`
	Skipped int              `json:"skipped,omitempty"`
	Seed    int64            `json:"seed"`
	Summary analysis.Summary `json:"summary"`
	// NPVs is the raw collection, present only when requested.
	NPVs []float64 `json:"npvs,omitempty"`
	// Traces is present only when requested.
	Traces []model.TrialTrace `json:"traces,omitempty"`
}

// CompareResponse is the response from a comparison run.
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains the summary for one variation.
type ComparisonResult struct {
	Name    string           `json:"name"`
	Summary analysis.Summary `json:"summary"`
}

// TechnologyInfo describes a technology preset file.
type TechnologyInfo struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	File  string          `json:"file"`
	Specs TechnologySpecs `json:"specs"`
}

// TechnologySpecs is the headline technology data.
type TechnologySpecs struct {
	CapacityKWh float64 `json:"capacity_kwh"`
	Efficiency  float64 `json:"efficiency"`
	Thermal     bool    `json:"thermal"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
