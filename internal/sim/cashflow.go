package sim

import (
	"fmt"
	"math"

	"storage-npv/internal/model"
)

// LoanPeriod is one scheduled payment split into its components.
type LoanPeriod struct {
	Interest  float64
	Principal float64
	// Balance is the remaining principal after this payment.
	Balance float64
}

// LoanSchedule is a level-payment amortization schedule. The balance
// shrinks monotonically and reaches exactly zero at term end; the final
// period absorbs accumulated floating rounding.
type LoanSchedule struct {
	Payment         float64
	PaymentsPerYear int
	Periods         []LoanPeriod
}

// NewLoanSchedule builds the full amortization schedule for a loan of
// `principal` at annual rate `annualRate`, repaid over `termYears` with
// `paymentsPerYear` level payments per year.
func NewLoanSchedule(principal, annualRate float64, termYears, paymentsPerYear int) (*LoanSchedule, error) {
	if principal < 0 {
		return nil, fmt.Errorf("%w: loan principal must be >= 0, got %v", model.ErrInvalidParameter, principal)
	}
	if annualRate < 0 {
		return nil, fmt.Errorf("%w: loan rate must be >= 0, got %v", model.ErrInvalidParameter, annualRate)
	}
	if termYears < 1 || paymentsPerYear < 1 {
		return nil, fmt.Errorf("%w: loan term and payment frequency must be >= 1", model.ErrInvalidParameter)
	}

	n := termYears * paymentsPerYear
	r := annualRate / float64(paymentsPerYear)

	var payment float64
	if r == 0 {
		payment = principal / float64(n)
	} else {
		growth := math.Pow(1+r, float64(n))
		payment = principal * r * growth / (growth - 1)
	}

	sched := &LoanSchedule{
		Payment:         payment,
		PaymentsPerYear: paymentsPerYear,
		Periods:         make([]LoanPeriod, n),
	}
	balance := principal
	for i := 0; i < n; i++ {
		interest := balance * r
		repaid := payment - interest
		balance -= repaid
		if i == n-1 {
			// Fold rounding residue into the last principal payment so the
			// schedule closes at exactly zero.
			repaid += balance
			balance = 0
		}
		sched.Periods[i] = LoanPeriod{Interest: interest, Principal: repaid, Balance: balance}
	}
	return sched, nil
}

// YearInterest sums the interest portions of the payments falling in plant
// year `year` (1-based). Zero outside the loan term.
func (l *LoanSchedule) YearInterest(year int) float64 {
	return l.sumYear(year, func(p LoanPeriod) float64 { return p.Interest })
}

// YearPrincipal sums the principal portions of the payments falling in
// plant year `year` (1-based).
func (l *LoanSchedule) YearPrincipal(year int) float64 {
	return l.sumYear(year, func(p LoanPeriod) float64 { return p.Principal })
}

// BalanceAfterYear is the remaining principal at the end of plant year
// `year`.
func (l *LoanSchedule) BalanceAfterYear(year int) float64 {
	last := year*l.PaymentsPerYear - 1
	if last < 0 {
		return 0
	}
	if last >= len(l.Periods) {
		return 0
	}
	return l.Periods[last].Balance
}

func (l *LoanSchedule) sumYear(year int, f func(LoanPeriod) float64) float64 {
	if year < 1 {
		return 0
	}
	start := (year - 1) * l.PaymentsPerYear
	end := year * l.PaymentsPerYear
	if start >= len(l.Periods) {
		return 0
	}
	if end > len(l.Periods) {
		end = len(l.Periods)
	}
	total := 0.0
	for _, p := range l.Periods[start:end] {
		total += f(p)
	}
	return total
}

// Projector turns one trial's daily margins into an annual net cash-flow
// series for the full plant life.
type Projector struct {
	tech model.StorageTechParams
	econ model.EconomicParams

	plantLifeYears int
	daysPerYear    int

	// loan is nil when the plant is all-equity funded.
	loan *LoanSchedule
}

// NewProjector validates the economic setup and precomputes the loan
// schedule. The schedule is deterministic, so it is shared read-only across
// every year of the trial.
func NewProjector(tech model.StorageTechParams, econ model.EconomicParams, plantLifeYears, daysPerYear int) (*Projector, error) {
	if err := tech.Validate(); err != nil {
		return nil, err
	}
	if err := econ.Validate(plantLifeYears); err != nil {
		return nil, err
	}
	if plantLifeYears < 1 || daysPerYear < 1 {
		return nil, fmt.Errorf("%w: plant life and days per year must be >= 1", model.ErrInvalidParameter)
	}

	p := &Projector{
		tech:           tech,
		econ:           econ,
		plantLifeYears: plantLifeYears,
		daysPerYear:    daysPerYear,
	}
	if econ.LoanPrincipal() > 0 {
		loan, err := NewLoanSchedule(econ.LoanPrincipal(), econ.LoanRate, econ.LoanTermYears, econ.PaymentsPerYear)
		if err != nil {
			return nil, err
		}
		p.loan = loan
	}
	return p, nil
}

// Project runs one full plant lifetime against fresh draws from sampler.
// It returns the annual net cash-flow series; rows are non-nil only when
// withTrace is set. A non-finite intermediate aborts with
// ErrNumericOverflow naming the year.
func (p *Projector) Project(sampler *PriceSampler, withTrace bool) ([]float64, []model.YearRow, error) {
	fci := p.econ.FixedCapitalInvestment
	opCost := p.econ.Costs.AnnualTotal(fci)
	discount := 1 + p.econ.DiscountRate

	flows := make([]float64, p.plantLifeYears)
	var rows []model.YearRow
	if withTrace {
		rows = make([]model.YearRow, 0, p.plantLifeYears)
	}

	carry := 0.0
	for year := 1; year <= p.plantLifeYears; year++ {
		gross := 0.0
		for day := 0; day < p.daysPerYear; day++ {
			gross += DailyMargin(sampler.Sample(), p.tech)
		}

		depr := fci * p.econ.Depreciation.RateFor(year)

		var interest, principal, balance float64
		if p.loan != nil {
			interest = p.loan.YearInterest(year)
			principal = p.loan.YearPrincipal(year)
			balance = p.loan.BalanceAfterYear(year)
		}

		ebitda := gross - opCost

		// Depreciation and interest are deductible; principal is not.
		taxable := ebitda - depr - interest
		if p.econ.LossCarryforward {
			taxable += carry
			if taxable <= 0 {
				carry = taxable
			} else {
				carry = 0
			}
		}
		tax := 0.0
		if taxable > 0 {
			tax = taxable * p.econ.TaxRate
		}

		net := ebitda - interest - principal - tax
		if !isFinite(gross) || !isFinite(net) {
			return nil, nil, fmt.Errorf("%w: non-finite cash flow in year %d (gross=%v net=%v)",
				model.ErrNumericOverflow, year, gross, net)
		}
		flows[year-1] = net

		if withTrace {
			rows = append(rows, model.YearRow{
				Year:          year,
				GrossMargin:   gross,
				OperatingCost: opCost,
				Depreciation:  depr,
				Interest:      interest,
				Principal:     principal,
				TaxableIncome: taxable,
				Tax:           tax,
				NetCashFlow:   net,
				DiscountedNet: net / math.Pow(discount, float64(year)),
				LoanBalance:   balance,
			})
		}
	}
	return flows, rows, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
