package model

// YearRow is one year of a trial's cash-flow projection. Rows are only
// retained when the run requests detailed traces.
type YearRow struct {
	Year          int     `json:"year"`
	GrossMargin   float64 `json:"gross_margin"`
	OperatingCost float64 `json:"operating_cost"`
	Depreciation  float64 `json:"depreciation"`
	Interest      float64 `json:"interest"`
	Principal     float64 `json:"principal"`
	TaxableIncome float64 `json:"taxable_income"`
	Tax           float64 `json:"tax"`
	NetCashFlow   float64 `json:"net_cash_flow"`
	DiscountedNet float64 `json:"discounted_net"`
	LoanBalance   float64 `json:"loan_balance"`
}

// TrialTrace is the full per-year record of one trial.
type TrialTrace struct {
	Trial int       `json:"trial"`
	NPV   float64   `json:"npv"`
	Years []YearRow `json:"years"`
}

// ResultSet is the write-once output of a full Monte Carlo run: one NPV per
// completed trial, plus enough metadata to reproduce the run. It is frozen
// once the driver returns; summarization reads it, nothing writes it.
type ResultSet struct {
	NPVs []float64 `json:"npvs"`
	// Seed is the master seed the run derived its trial generators from.
	Seed   int64 `json:"seed"`
	Trials int   `json:"trials"`
	// Skipped counts trials dropped under skip_and_log strictness.
	Skipped int `json:"skipped"`
	// Traces is populated only when the run requested detailed traces.
	Traces []TrialTrace `json:"traces,omitempty"`
}
