package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"storage-npv/internal/model"
)

// Driver orchestrates a full Monte Carlo run: Trials independent plant
// lifetimes, each with its own deterministically seeded random stream,
// collected into a write-once ResultSet.
//
// Trial i always draws from a generator seeded with Seed+i, so the
// ResultSet is bit-identical for any worker count, and two runs with the
// same master seed reproduce each other exactly.
type Driver struct {
	prices model.PriceParams
	tech   model.StorageTechParams
	econ   model.EconomicParams
	sim    model.SimulationParams

	// proj is deterministic and stateless across trials; built once.
	proj *Projector

	log *zap.Logger
}

// NewDriver validates every parameter bundle up front. All configuration
// errors surface here, before a single trial runs.
func NewDriver(prices model.PriceParams, tech model.StorageTechParams, econ model.EconomicParams,
	simp model.SimulationParams, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := simp.Validate(); err != nil {
		return nil, err
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	proj, err := NewProjector(tech, econ, simp.PlantLifeYears, simp.DaysPerYear)
	if err != nil {
		return nil, err
	}
	return &Driver{
		prices: prices,
		tech:   tech,
		econ:   econ,
		sim:    simp,
		proj:   proj,
		log:    logger,
	}, nil
}

type trialOutcome struct {
	npv   float64
	trace []model.YearRow
	err   error
}

// Run executes the configured number of trials and freezes the results.
// Under fail_fast strictness (the default) the first trial that produces a
// non-finite value aborts the whole run; under skip_and_log the trial is
// dropped, logged, and counted in ResultSet.Skipped. The context is checked
// between trials only: trials are atomic.
func (d *Driver) Run(ctx context.Context) (*model.ResultSet, error) {
	workers := d.sim.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > d.sim.Trials {
		workers = d.sim.Trials
	}

	start := time.Now()
	d.log.Info("monte carlo run starting",
		zap.Int("trials", d.sim.Trials),
		zap.Int("workers", workers),
		zap.Int64("seed", d.sim.Seed),
		zap.Int("plant_life_years", d.sim.PlantLifeYears),
		zap.Int("days_per_year", d.sim.DaysPerYear),
	)

	// One slot per trial index: no contention, and compaction below keeps
	// trial order stable so seeded runs stay bit-for-bit reproducible.
	outcomes := make([]trialOutcome, d.sim.Trials)

	quit := make(chan struct{})
	var quitOnce sync.Once
	stop := func() { quitOnce.Do(func() { close(quit) }) }

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for trial := offset; trial < d.sim.Trials; trial += workers {
				select {
				case <-ctx.Done():
					outcomes[trial].err = ctx.Err()
					stop()
					return
				case <-quit:
					return
				default:
				}

				npv, trace, err := d.runTrial(trial)
				outcomes[trial] = trialOutcome{npv: npv, trace: trace, err: err}
				if err != nil && d.strictness() == model.StrictFailFast {
					stop()
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs := &model.ResultSet{
		NPVs:   make([]float64, 0, d.sim.Trials),
		Seed:   d.sim.Seed,
		Trials: d.sim.Trials,
	}
	if d.sim.KeepTraces {
		rs.Traces = make([]model.TrialTrace, 0, d.sim.Trials)
	}

	for trial, out := range outcomes {
		if out.err != nil {
			if d.strictness() == model.StrictFailFast {
				return nil, fmt.Errorf("trial %d: %w", trial, out.err)
			}
			d.log.Warn("trial skipped", zap.Int("trial", trial), zap.Error(out.err))
			rs.Skipped++
			continue
		}
		rs.NPVs = append(rs.NPVs, out.npv)
		if d.sim.KeepTraces {
			rs.Traces = append(rs.Traces, model.TrialTrace{Trial: trial, NPV: out.npv, Years: out.trace})
		}
	}

	d.log.Info("monte carlo run complete",
		zap.Int("completed", len(rs.NPVs)),
		zap.Int("skipped", rs.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rs, nil
}

// runTrial executes one full plant lifetime with a fresh random stream.
func (d *Driver) runTrial(trial int) (float64, []model.YearRow, error) {
	src := rand.NewSource(uint64(d.sim.Seed) + uint64(trial))
	sampler, err := NewPriceSampler(d.prices, src)
	if err != nil {
		return 0, nil, err
	}
	flows, trace, err := d.proj.Project(sampler, d.sim.KeepTraces)
	if err != nil {
		return 0, nil, err
	}
	npv, err := NPV(flows, d.econ.DiscountRate, d.econ.EquityOutlay())
	if err != nil {
		return 0, nil, err
	}
	return npv, trace, nil
}

func (d *Driver) strictness() model.Strictness {
	if d.sim.Strictness == "" {
		return model.StrictFailFast
	}
	return d.sim.Strictness
}
