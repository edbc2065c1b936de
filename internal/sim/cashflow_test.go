package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"storage-npv/internal/model"
)

func TestLoanScheduleKnownPayment(t *testing.T) {
	// $100,000 at 5% over 30 years, monthly: the textbook $536.82 payment.
	l, err := NewLoanSchedule(100_000, 0.05, 30, 12)
	require.NoError(t, err)
	assert.InDelta(t, 536.82, l.Payment, 0.01)
	assert.Len(t, l.Periods, 360)
}

func TestLoanScheduleBalanceReachesZero(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
		perYear   int
	}{
		{85e6, 0.08, 10, 12},
		{100_000, 0.05, 30, 12},
		{1_000, 0.20, 3, 4},
		{5e6, 0, 10, 12},
		{123.45, 0.0731, 7, 1},
	}
	for _, c := range cases {
		l, err := NewLoanSchedule(c.principal, c.rate, c.term, c.perYear)
		require.NoError(t, err)

		// Balance shrinks monotonically and closes at exactly zero.
		prev := c.principal
		for _, p := range l.Periods {
			assert.LessOrEqual(t, p.Balance, prev+1e-9*c.principal)
			prev = p.Balance
		}
		assert.Zero(t, l.Periods[len(l.Periods)-1].Balance)

		// Principal repaid sums to the amount borrowed.
		total := 0.0
		for _, p := range l.Periods {
			total += p.Principal
		}
		assert.InEpsilon(t, c.principal, total, 1e-6)
	}
}

func TestLoanScheduleZeroRate(t *testing.T) {
	l, err := NewLoanSchedule(1200, 0, 1, 12)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, l.Payment, 1e-9)
	assert.Zero(t, l.YearInterest(1))
	assert.InDelta(t, 1200.0, l.YearPrincipal(1), 1e-9)
}

func TestLoanScheduleYearAggregation(t *testing.T) {
	l, err := NewLoanSchedule(85e6, 0.08, 10, 12)
	require.NoError(t, err)

	for year := 1; year <= 10; year++ {
		annual := l.YearInterest(year) + l.YearPrincipal(year)
		assert.InEpsilon(t, 12*l.Payment, annual, 1e-9, "year %d", year)
	}
	// Post-term years carry zero debt service.
	assert.Zero(t, l.YearInterest(11))
	assert.Zero(t, l.YearPrincipal(11))
	assert.Zero(t, l.BalanceAfterYear(11))
}

func TestLoanScheduleRejectsBadInputs(t *testing.T) {
	_, err := NewLoanSchedule(-1, 0.05, 10, 12)
	require.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = NewLoanSchedule(100, -0.05, 10, 12)
	require.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = NewLoanSchedule(100, 0.05, 0, 12)
	require.ErrorIs(t, err, model.ErrInvalidParameter)
}

// fixedPrices builds zero-spread distributions so every day draws the same
// price pair.
func fixedPrices(peak, trough float64) model.PriceParams {
	return model.PriceParams{
		Peak:         model.Distribution{Kind: model.DistUniform, Mean: peak},
		Trough:       model.Distribution{Kind: model.DistUniform, Mean: trough},
		StorageHours: model.Distribution{Kind: model.DistUniform, Mean: 4},
	}
}

func TestProjectorSingleDayScenario(t *testing.T) {
	// Peak 100, trough 40, unit capacity, perfect efficiency, one day, one
	// year, no financing, no tax: the year nets the 60 spread minus the
	// flat operating cost.
	tech := model.StorageTechParams{CapacityKWh: 1, Efficiency: 1}
	econ := model.EconomicParams{
		EquityFraction: 1,
		DiscountRate:   0.1,
		Depreciation:   model.DepreciationSchedule{Kind: model.DepreciationStraightLine, LifeYears: 1},
		Costs:          model.OperatingCosts{AnnualFixed: 10},
	}
	proj, err := NewProjector(tech, econ, 1, 1)
	require.NoError(t, err)

	sampler, err := NewPriceSampler(fixedPrices(100, 40), rand.NewSource(1))
	require.NoError(t, err)

	flows, _, err := proj.Project(sampler, false)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.InDelta(t, 50.0, flows[0], 1e-9)
}

func TestProjectorLoanOutlivesPlant(t *testing.T) {
	tech := model.StorageTechParams{CapacityKWh: 1, Efficiency: 1}
	econ := model.EconomicParams{
		FixedCapitalInvestment: 1000,
		LoanFraction:           1,
		LoanTermYears:          20,
		LoanRate:               0.08,
		PaymentsPerYear:        12,
		DiscountRate:           0.1,
		Depreciation:           model.DepreciationSchedule{Kind: model.DepreciationStraightLine, LifeYears: 7},
	}
	_, err := NewProjector(tech, econ, 10, 365)
	require.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestProjectorDebtServiceEndsWithLoan(t *testing.T) {
	tech := model.StorageTechParams{CapacityKWh: 1000, Efficiency: 0.8}
	econ := model.EconomicParams{
		FixedCapitalInvestment: 10_000,
		LoanFraction:           1,
		LoanTermYears:          2,
		LoanRate:               0.08,
		PaymentsPerYear:        12,
		DiscountRate:           0.1,
		Depreciation:           model.DepreciationSchedule{Kind: model.DepreciationStraightLine, LifeYears: 2},
	}
	proj, err := NewProjector(tech, econ, 4, 10)
	require.NoError(t, err)

	sampler, err := NewPriceSampler(fixedPrices(0.10, 0.02), rand.NewSource(1))
	require.NoError(t, err)
	_, rows, err := proj.Project(sampler, true)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Greater(t, rows[0].Interest+rows[0].Principal, 0.0)
	assert.Greater(t, rows[1].Interest+rows[1].Principal, 0.0)
	assert.Zero(t, rows[2].Interest+rows[2].Principal)
	assert.Zero(t, rows[3].Interest+rows[3].Principal)
	assert.Zero(t, rows[1].LoanBalance)

	// With identical prices every day, post-loan years net strictly more.
	assert.Greater(t, rows[2].NetCashFlow, rows[0].NetCashFlow)
}

func TestProjectorLossCarryforward(t *testing.T) {
	// Prices produce a steady margin of 3000/year; writing the whole basis
	// off in year 1 makes that year's taxable income deeply negative. With
	// carryforward, later years' tax shrinks by the carried loss.
	tech := model.StorageTechParams{CapacityKWh: 1000, Efficiency: 0.8}
	base := model.EconomicParams{
		FixedCapitalInvestment: 10_000,
		EquityFraction:         1,
		TaxRate:                0.21,
		DiscountRate:           0.1,
		Depreciation:           model.DepreciationSchedule{Kind: model.DepreciationStraightLine, LifeYears: 1},
	}

	carry := base
	carry.LossCarryforward = true
	noCarry := base

	run := func(econ model.EconomicParams) []model.YearRow {
		proj, err := NewProjector(tech, econ, 10, 50)
		require.NoError(t, err)
		sampler, err := NewPriceSampler(fixedPrices(0.10, 0.02), rand.NewSource(1))
		require.NoError(t, err)
		_, rows, err := proj.Project(sampler, true)
		require.NoError(t, err)
		return rows
	}

	carryRows := run(carry)
	plainRows := run(noCarry)

	require.Negative(t, carryRows[0].TaxableIncome)
	assert.Zero(t, carryRows[0].Tax)
	assert.Zero(t, plainRows[0].Tax)
	// Year 2 absorbs year 1's loss only in carryforward mode.
	assert.Less(t, carryRows[1].Tax, plainRows[1].Tax)

	totalCarry := 0.0
	totalPlain := 0.0
	for i := range carryRows {
		totalCarry += carryRows[i].Tax
		totalPlain += plainRows[i].Tax
	}
	assert.Less(t, totalCarry, totalPlain)
}

func TestProjectorOverflowNamesYear(t *testing.T) {
	tech := model.StorageTechParams{CapacityKWh: 1e10, Efficiency: 1}
	econ := model.EconomicParams{
		EquityFraction: 1,
		DiscountRate:   0.1,
		Depreciation:   model.DepreciationSchedule{Kind: model.DepreciationStraightLine, LifeYears: 1},
	}
	proj, err := NewProjector(tech, econ, 3, 2)
	require.NoError(t, err)

	sampler, err := NewPriceSampler(fixedPrices(math.MaxFloat64, 0), rand.NewSource(1))
	require.NoError(t, err)
	_, _, err = proj.Project(sampler, false)
	require.ErrorIs(t, err, model.ErrNumericOverflow)
	assert.Contains(t, err.Error(), "year 1")
}
