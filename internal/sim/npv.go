package sim

import (
	"fmt"

	"storage-npv/internal/model"
)

// NPV discounts an annual cash-flow series at `rate` and nets it against
// the initial investment:
//
//	NPV = −investment + Σ_{t=1..T} cf_t / (1+rate)^t
//
// Cash flows may be any real values, negative years included. A rate at or
// below −1 makes the discount factor explode or flip sign and is rejected.
func NPV(cashFlows []float64, rate, initialInvestment float64) (float64, error) {
	if rate <= -1 {
		return 0, fmt.Errorf("%w: discount rate must be > -1, got %v", model.ErrInvalidParameter, rate)
	}
	npv := -initialInvestment
	factor := 1.0
	for t, cf := range cashFlows {
		factor *= 1 + rate
		npv += cf / factor
		if !isFinite(npv) {
			return 0, fmt.Errorf("%w: non-finite NPV at year %d", model.ErrNumericOverflow, t+1)
		}
	}
	return npv, nil
}
