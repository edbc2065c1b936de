package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"storage-npv/internal/model"
)

// Config is the on-disk configuration shape (YAML). It enumerates every
// engine input: price distributions, storage technology, simulation sizing,
// and plant economics.
type Config struct {
	// Optional: load technology parameters from a separate YAML
	// (e.g. examples/technologies/*.yaml). If both TechnologyFile and
	// Technology are provided, Technology overrides TechnologyFile.
	TechnologyFile string           `yaml:"technology_file" json:"technology_file,omitempty"`
	Technology     TechnologyConfig `yaml:"technology" json:"technology"`
	Prices         PricesConfig     `yaml:"prices" json:"prices"`
	Simulation     SimulationConfig `yaml:"simulation" json:"simulation"`
	Economics      EconomicsConfig  `yaml:"economics" json:"economics"`
}

type TechnologyConfig struct {
	Name           string  `yaml:"name" json:"name"`
	CapacityKWh    float64 `yaml:"capacity_kwh" json:"capacity_kwh"`
	Efficiency     float64 `yaml:"efficiency" json:"efficiency"`
	HourlyLossRate float64 `yaml:"hourly_loss_rate" json:"hourly_loss_rate"`
	Thermal        bool    `yaml:"thermal" json:"thermal"`
	HeatRecycling  float64 `yaml:"heat_recycling" json:"heat_recycling"`
}

type PricesConfig struct {
	Peak         model.Distribution `yaml:"peak" json:"peak"`
	Trough       model.Distribution `yaml:"trough" json:"trough"`
	StorageHours model.Distribution `yaml:"storage_hours" json:"storage_hours"`
}

type SimulationConfig struct {
	PlantLifeYears int              `yaml:"plant_life_years" json:"plant_life_years"`
	DaysPerYear    int              `yaml:"days_per_year" json:"days_per_year"`
	Trials         int              `yaml:"trials" json:"trials"`
	Seed           int64            `yaml:"seed" json:"seed"`
	Workers        int              `yaml:"workers" json:"workers"`
	Strictness     model.Strictness `yaml:"strictness" json:"strictness"`
	KeepTraces     bool             `yaml:"keep_traces" json:"keep_traces"`
}

type EconomicsConfig struct {
	// Either give FixedCapitalInvestment directly, or leave it zero and
	// provide StorageCostPerKWh (+ cost factors) to derive it from the
	// technology capacity.
	FixedCapitalInvestment float64 `yaml:"fixed_capital_investment" json:"fixed_capital_investment"`
	StorageCostPerKWh      float64 `yaml:"storage_cost_per_kwh" json:"storage_cost_per_kwh"`
	TDCFactor              float64 `yaml:"tdc_factor" json:"tdc_factor"`
	IndirectFactor         float64 `yaml:"indirect_factor" json:"indirect_factor"`

	LoanFraction    float64 `yaml:"loan_fraction" json:"loan_fraction"`
	EquityFraction  float64 `yaml:"equity_fraction" json:"equity_fraction"`
	LoanTermYears   int     `yaml:"loan_term_years" json:"loan_term_years"`
	LoanRate        float64 `yaml:"loan_rate" json:"loan_rate"`
	PaymentsPerYear int     `yaml:"payments_per_year" json:"payments_per_year"`

	TaxRate          float64 `yaml:"tax_rate" json:"tax_rate"`
	DiscountRate     float64 `yaml:"discount_rate" json:"discount_rate"`
	LossCarryforward bool    `yaml:"loss_carryforward" json:"loss_carryforward"`

	Depreciation   DepreciationConfig   `yaml:"depreciation" json:"depreciation"`
	OperatingCosts OperatingCostsConfig `yaml:"operating_costs" json:"operating_costs"`
}

type DepreciationConfig struct {
	Kind      model.DepreciationKind `yaml:"kind" json:"kind"`
	LifeYears int                    `yaml:"life_years" json:"life_years,omitempty"`
	Rates     []float64              `yaml:"rates" json:"rates,omitempty"`
}

type OperatingCostsConfig struct {
	AnnualFixed        float64 `yaml:"annual_fixed" json:"annual_fixed"`
	LaborAnnual        float64 `yaml:"labor_annual" json:"labor_annual"`
	OverheadFactor     float64 `yaml:"overhead_factor" json:"overhead_factor"`
	MaintenanceFracFCI float64 `yaml:"maintenance_frac_fci" json:"maintenance_frac_fci"`
}

// Default returns the documented baseline: a 250 MWh storage plant
// benchmarked against ERCOT wholesale day-ahead prices (delivery and other
// non-wholesale charges excluded), 80% round-trip efficiency, 10-year loan
// at 8% covering the full investment, 7-year MACRS, 10% target IRR.
func Default() *Config {
	return &Config{
		Technology: TechnologyConfig{
			Name:           "lithium-ion",
			CapacityKWh:    250_000,
			Efficiency:     0.80,
			HourlyLossRate: 0.00037,
		},
		Prices: PricesConfig{
			// $/kWh; uniform ranges from the market benchmark.
			Peak:         model.UniformFromRange(0.0672, 0.11),
			Trough:       model.UniformFromRange(0.01, 0.03),
			StorageHours: model.UniformFromRange(3, 5),
		},
		Simulation: SimulationConfig{
			PlantLifeYears: 30,
			DaysPerYear:    365,
			Trials:         1000,
			Seed:           1,
			Workers:        0,
			Strictness:     model.StrictFailFast,
		},
		Economics: EconomicsConfig{
			StorageCostPerKWh: 80,
			TDCFactor:         0.7,
			IndirectFactor:    0.5,
			LoanFraction:      1.0,
			EquityFraction:    0.0,
			LoanTermYears:     10,
			LoanRate:          0.08,
			PaymentsPerYear:   12,
			TaxRate:           0.21,
			DiscountRate:      0.10,
			LossCarryforward:  true,
			Depreciation: DepreciationConfig{
				Kind:  model.DepreciationMACRS,
				Rates: model.MACRS7Year,
			},
			OperatingCosts: OperatingCostsConfig{
				LaborAnnual:        1_354_000,
				OverheadFactor:     0.9,
				MaintenanceFracFCI: 0.05,
			},
		},
	}
}

// Load reads, merges, and validates a config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	// Monthly payments unless the config says otherwise; this keeps loan
	// sections concise and matches the documented defaults.
	if c.Economics.PaymentsPerYear == 0 {
		c.Economics.PaymentsPerYear = 12
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If technology_file is set, load it and merge in any explicit
	// overrides from c.Technology.
	if c.TechnologyFile != "" {
		techPath := c.TechnologyFile
		if !filepath.IsAbs(techPath) {
			// Prefer interpreting relative paths as relative to the config
			// file directory, falling back to the path as given.
			cand := filepath.Join(filepath.Dir(path), techPath)
			if _, err := os.Stat(cand); err == nil {
				techPath = cand
			}
		}
		loaded, err := loadTechnologyFile(techPath)
		if err != nil {
			return nil, err
		}
		c.Technology = MergeTechnology(loaded, c.Technology)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.ToPriceParams().Validate(); err != nil {
		return fmt.Errorf("prices config invalid: %w", err)
	}
	if err := c.ToTechParams().Validate(); err != nil {
		return fmt.Errorf("technology config invalid: %w", err)
	}
	simp := c.ToSimulationParams()
	if err := simp.Validate(); err != nil {
		return fmt.Errorf("simulation config invalid: %w", err)
	}
	if err := c.ToEconomicParams().Validate(simp.PlantLifeYears); err != nil {
		return fmt.Errorf("economics config invalid: %w", err)
	}
	return nil
}

func (c *Config) ToPriceParams() model.PriceParams {
	return model.PriceParams{
		Peak:         c.Prices.Peak,
		Trough:       c.Prices.Trough,
		StorageHours: c.Prices.StorageHours,
	}
}

func (c *Config) ToTechParams() model.StorageTechParams {
	return model.StorageTechParams{
		Name:           c.Technology.Name,
		CapacityKWh:    c.Technology.CapacityKWh,
		Efficiency:     c.Technology.Efficiency,
		HourlyLossRate: c.Technology.HourlyLossRate,
		Thermal:        c.Technology.Thermal,
		HeatRecycling:  c.Technology.HeatRecycling,
	}
}

func (c *Config) ToSimulationParams() model.SimulationParams {
	return model.SimulationParams{
		PlantLifeYears: c.Simulation.PlantLifeYears,
		DaysPerYear:    c.Simulation.DaysPerYear,
		Trials:         c.Simulation.Trials,
		Seed:           c.Simulation.Seed,
		Workers:        c.Simulation.Workers,
		Strictness:     c.Simulation.Strictness,
		KeepTraces:     c.Simulation.KeepTraces,
	}
}

func (c *Config) ToEconomicParams() model.EconomicParams {
	return model.EconomicParams{
		FixedCapitalInvestment: c.FCI(),
		LoanFraction:           c.Economics.LoanFraction,
		EquityFraction:         c.Economics.EquityFraction,
		LoanTermYears:          c.Economics.LoanTermYears,
		LoanRate:               c.Economics.LoanRate,
		PaymentsPerYear:        c.Economics.PaymentsPerYear,
		TaxRate:                c.Economics.TaxRate,
		DiscountRate:           c.Economics.DiscountRate,
		LossCarryforward:       c.Economics.LossCarryforward,
		Depreciation: model.DepreciationSchedule{
			Kind:      c.Economics.Depreciation.Kind,
			LifeYears: c.Economics.Depreciation.LifeYears,
			Rates:     c.Economics.Depreciation.Rates,
		},
		Costs: model.OperatingCosts{
			AnnualFixed:        c.Economics.OperatingCosts.AnnualFixed,
			LaborAnnual:        c.Economics.OperatingCosts.LaborAnnual,
			OverheadFactor:     c.Economics.OperatingCosts.OverheadFactor,
			MaintenanceFracFCI: c.Economics.OperatingCosts.MaintenanceFracFCI,
		},
	}
}

// FCI returns the fixed capital investment, deriving it from the storage
// cost model when not given directly:
//
//	TIC = storage_cost_per_kwh × capacity
//	FCI = TIC(1+TDC)(1+indirect) + TIC(1+TDC)
//
// TDC covers direct costs (land, buildings, site development, auxiliaries);
// indirect covers prorated expenses, construction and field fees,
// contingency.
func (c *Config) FCI() float64 {
	if c.Economics.FixedCapitalInvestment > 0 {
		return c.Economics.FixedCapitalInvestment
	}
	tic := c.Economics.StorageCostPerKWh * c.Technology.CapacityKWh
	tdc := tic * (1 + c.Economics.TDCFactor)
	return tdc*(1+c.Economics.IndirectFactor) + tdc
}

type technologyFileWrapper struct {
	Technology TechnologyConfig `yaml:"technology"`
}

func loadTechnologyFile(path string) (TechnologyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TechnologyConfig{}, err
	}
	var w technologyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TechnologyConfig{}, err
	}
	return w.Technology, nil
}

// MergeTechnology overlays non-zero fields from override onto base.
// Used when loading a technology file and then applying overrides from the
// main config or an API request.
func MergeTechnology(base, override TechnologyConfig) TechnologyConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.Efficiency != 0 {
		out.Efficiency = override.Efficiency
	}
	if override.HourlyLossRate != 0 {
		out.HourlyLossRate = override.HourlyLossRate
	}
	if override.Thermal {
		out.Thermal = true
	}
	if override.HeatRecycling != 0 {
		out.HeatRecycling = override.HeatRecycling
	}
	return out
}
