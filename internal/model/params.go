package model

import (
	"fmt"
	"math"
)

// PriceParams describes the stochastic daily market inputs.
// Units:
// - Peak/Trough: $/kWh wholesale price distributions
// - StorageHours: hours energy is held between charge and discharge
type PriceParams struct {
	Peak         Distribution
	Trough       Distribution
	StorageHours Distribution
}

func (p PriceParams) Validate() error {
	if err := p.Peak.Validate(); err != nil {
		return fmt.Errorf("peak: %w", err)
	}
	if err := p.Trough.Validate(); err != nil {
		return fmt.Errorf("trough: %w", err)
	}
	if err := p.StorageHours.Validate(); err != nil {
		return fmt.Errorf("storage_hours: %w", err)
	}
	// Without this there is no arbitrage margin on average, and the run is
	// almost certainly a mis-entered config rather than a real scenario.
	if p.Peak.Mean < p.Trough.Mean {
		return fmt.Errorf("%w: peak price mean (%v) must be >= trough price mean (%v)",
			ErrInvalidParameter, p.Peak.Mean, p.Trough.Mean)
	}
	if p.StorageHours.Mean < 0 {
		return fmt.Errorf("%w: storage hours mean must be >= 0, got %v", ErrInvalidParameter, p.StorageHours.Mean)
	}
	return nil
}

// StorageTechParams defines the physical parameters of the storage plant.
// Immutable for the life of a run.
// Units:
// - CapacityKWh: kWh required to fully charge the unit
// - Efficiency: round-trip conversion efficiency, (0, 1]
// - HourlyLossRate: fraction of stored capacity lost per hour held, >= 0
// - HeatRecycling: thermal only, fraction of conversion losses recovered
//   as sellable heat, [0, 1]
type StorageTechParams struct {
	Name           string
	CapacityKWh    float64
	Efficiency     float64
	HourlyLossRate float64
	Thermal        bool
	HeatRecycling  float64
}

func (t StorageTechParams) Validate() error {
	if t.CapacityKWh <= 0 {
		return fmt.Errorf("%w: capacity_kwh must be > 0, got %v", ErrInvalidParameter, t.CapacityKWh)
	}
	if t.Efficiency <= 0 || t.Efficiency > 1 {
		return fmt.Errorf("%w: efficiency must be in (0, 1], got %v", ErrInvalidParameter, t.Efficiency)
	}
	if t.HourlyLossRate < 0 {
		return fmt.Errorf("%w: hourly_loss_rate must be >= 0, got %v", ErrInvalidParameter, t.HourlyLossRate)
	}
	if t.HeatRecycling < 0 || t.HeatRecycling > 1 {
		return fmt.Errorf("%w: heat_recycling must be in [0, 1], got %v", ErrInvalidParameter, t.HeatRecycling)
	}
	return nil
}

// Strictness controls how the driver reacts to a trial that produces a
// non-finite value.
type Strictness string

const (
	// StrictFailFast aborts the whole run on the first bad trial. This is
	// the default: silently dropping trials skews the distribution.
	StrictFailFast Strictness = "fail_fast"
	// StrictSkipAndLog drops the bad trial, logs it, and keeps going.
	StrictSkipAndLog Strictness = "skip_and_log"
)

// SimulationParams sizes the Monte Carlo run.
type SimulationParams struct {
	PlantLifeYears int
	DaysPerYear    int
	Trials         int
	// Seed is the master seed. Trial i derives its own generator from
	// Seed+i, so results are identical for any worker count.
	Seed int64
	// Workers <= 1 runs trials sequentially.
	Workers    int
	Strictness Strictness
	// KeepTraces retains per-year rows for every trial. Off by default:
	// memory grows O(trials × years) when enabled.
	KeepTraces bool
}

func (s SimulationParams) Validate() error {
	if s.PlantLifeYears < 1 {
		return fmt.Errorf("%w: plant_life_years must be >= 1, got %d", ErrInvalidParameter, s.PlantLifeYears)
	}
	if s.DaysPerYear < 1 {
		return fmt.Errorf("%w: days_per_year must be >= 1, got %d", ErrInvalidParameter, s.DaysPerYear)
	}
	if s.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1, got %d", ErrInvalidParameter, s.Trials)
	}
	switch s.Strictness {
	case "", StrictFailFast, StrictSkipAndLog:
	default:
		return fmt.Errorf("%w: unsupported strictness %q", ErrInvalidParameter, s.Strictness)
	}
	return nil
}

// DepreciationKind selects the depreciation schedule shape.
type DepreciationKind string

const (
	// DepreciationMACRS uses an explicit year-by-year rate table.
	DepreciationMACRS DepreciationKind = "macrs"
	// DepreciationStraightLine spreads the basis evenly over LifeYears.
	DepreciationStraightLine DepreciationKind = "straight_line"
)

// MACRS7Year is the 7-year MACRS rate table (half-year convention).
var MACRS7Year = []float64{0.1429, 0.2449, 0.1749, 0.1249, 0.0893, 0.0892, 0.0893, 0.0446}

// DepreciationSchedule describes how the capital basis is written off.
type DepreciationSchedule struct {
	Kind DepreciationKind
	// LifeYears applies to straight_line.
	LifeYears int
	// Rates applies to macrs; must sum to ~1.
	Rates []float64
}

func (d DepreciationSchedule) Validate() error {
	switch d.Kind {
	case DepreciationMACRS:
		if len(d.Rates) == 0 {
			return fmt.Errorf("%w: macrs depreciation requires a rate table", ErrInvalidParameter)
		}
		sum := 0.0
		for _, r := range d.Rates {
			if r < 0 {
				return fmt.Errorf("%w: macrs rates must be >= 0, got %v", ErrInvalidParameter, r)
			}
			sum += r
		}
		if math.Abs(sum-1) > 1e-3 {
			return fmt.Errorf("%w: macrs rates must sum to 1, got %v", ErrInvalidParameter, sum)
		}
	case DepreciationStraightLine:
		if d.LifeYears < 1 {
			return fmt.Errorf("%w: straight_line depreciation requires life_years >= 1, got %d",
				ErrInvalidParameter, d.LifeYears)
		}
	default:
		return fmt.Errorf("%w: unsupported depreciation kind %q", ErrInvalidParameter, d.Kind)
	}
	return nil
}

// RateFor returns the fraction of the basis written off in plant year
// `year` (1-based). Zero after the schedule is exhausted.
func (d DepreciationSchedule) RateFor(year int) float64 {
	if year < 1 {
		return 0
	}
	switch d.Kind {
	case DepreciationMACRS:
		if year > len(d.Rates) {
			return 0
		}
		return d.Rates[year-1]
	case DepreciationStraightLine:
		if year > d.LifeYears {
			return 0
		}
		return 1 / float64(d.LifeYears)
	}
	return 0
}

// OperatingCosts is the annual operating-cost model:
// labor roster (with overhead), maintenance as a fraction of the fixed
// capital investment, plus a flat adder.
type OperatingCosts struct {
	AnnualFixed        float64
	LaborAnnual        float64
	OverheadFactor     float64
	MaintenanceFracFCI float64
}

func (o OperatingCosts) Validate() error {
	if o.AnnualFixed < 0 || o.LaborAnnual < 0 || o.OverheadFactor < 0 || o.MaintenanceFracFCI < 0 {
		return fmt.Errorf("%w: operating cost fields must be >= 0", ErrInvalidParameter)
	}
	return nil
}

// AnnualTotal is the operating cost for one year given the plant's fixed
// capital investment.
func (o OperatingCosts) AnnualTotal(fci float64) float64 {
	return o.AnnualFixed + o.LaborAnnual*(1+o.OverheadFactor) + o.MaintenanceFracFCI*fci
}

// EconomicParams defines financing, tax and discounting for one plant.
// Units:
// - FixedCapitalInvestment: $ (FCI)
// - LoanFraction/EquityFraction: fractions of FCI; must sum to 1
// - LoanRate/TaxRate/DiscountRate: annual fractions
type EconomicParams struct {
	FixedCapitalInvestment float64
	LoanFraction           float64
	EquityFraction         float64
	LoanTermYears          int
	LoanRate               float64
	PaymentsPerYear        int
	TaxRate                float64
	// DiscountRate is the required (target) internal rate of return used
	// to discount annual cash flows.
	DiscountRate float64
	// LossCarryforward rolls negative taxable income into later years.
	LossCarryforward bool
	Depreciation     DepreciationSchedule
	Costs            OperatingCosts
}

// Validate checks the economic parameters against the plant life; the loan
// must not outlive the plant.
func (e EconomicParams) Validate(plantLifeYears int) error {
	if e.FixedCapitalInvestment < 0 {
		return fmt.Errorf("%w: fixed_capital_investment must be >= 0, got %v",
			ErrInvalidParameter, e.FixedCapitalInvestment)
	}
	if e.LoanFraction < 0 || e.LoanFraction > 1 {
		return fmt.Errorf("%w: loan_fraction must be in [0, 1], got %v", ErrInvalidParameter, e.LoanFraction)
	}
	if e.EquityFraction < 0 || e.EquityFraction > 1 {
		return fmt.Errorf("%w: equity_fraction must be in [0, 1], got %v", ErrInvalidParameter, e.EquityFraction)
	}
	// Both fractions fund the same FCI; anything other than a full split
	// double counts or leaves the investment unfunded.
	if math.Abs(e.LoanFraction+e.EquityFraction-1) > 1e-9 {
		return fmt.Errorf("%w: loan_fraction + equity_fraction must equal 1, got %v",
			ErrInvalidParameter, e.LoanFraction+e.EquityFraction)
	}
	if e.LoanFraction > 0 {
		if e.LoanTermYears < 1 {
			return fmt.Errorf("%w: loan_term_years must be >= 1 when loan_fraction > 0, got %d",
				ErrInvalidParameter, e.LoanTermYears)
		}
		if e.LoanTermYears > plantLifeYears {
			return fmt.Errorf("%w: loan term (%d years) exceeds plant life (%d years)",
				ErrInvalidParameter, e.LoanTermYears, plantLifeYears)
		}
		if e.LoanRate < 0 {
			return fmt.Errorf("%w: loan_rate must be >= 0, got %v", ErrInvalidParameter, e.LoanRate)
		}
		if e.PaymentsPerYear < 1 {
			return fmt.Errorf("%w: payments_per_year must be >= 1, got %d",
				ErrInvalidParameter, e.PaymentsPerYear)
		}
	}
	if e.TaxRate < 0 || e.TaxRate >= 1 {
		return fmt.Errorf("%w: tax_rate must be in [0, 1), got %v", ErrInvalidParameter, e.TaxRate)
	}
	if e.DiscountRate <= -1 {
		return fmt.Errorf("%w: discount_rate must be > -1, got %v", ErrInvalidParameter, e.DiscountRate)
	}
	if err := e.Depreciation.Validate(); err != nil {
		return fmt.Errorf("depreciation: %w", err)
	}
	if err := e.Costs.Validate(); err != nil {
		return fmt.Errorf("operating_costs: %w", err)
	}
	return nil
}

// LoanPrincipal is the borrowed share of the investment.
func (e EconomicParams) LoanPrincipal() float64 {
	return e.LoanFraction * e.FixedCapitalInvestment
}

// EquityOutlay is the cash the owner puts in at year zero; it is the
// "initial investment" subtracted by the NPV evaluation.
func (e EconomicParams) EquityOutlay() float64 {
	return e.EquityFraction * e.FixedCapitalInvestment
}
