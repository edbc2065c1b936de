package sim

import "storage-npv/internal/model"

// DailyMargin computes the gross margin for one simulated day:
//
//	deliverable = capacity × efficiency × (1 − lossRate × storageHours)
//	margin      = deliverable × peak − capacity × trough
//
// Charging buys the full capacity at the trough price; storage and
// conversion losses reduce only the energy delivered back at the peak
// price. Thermal units additionally sell recycled conversion heat.
//
// The margin is allowed to go negative: an adverse-price day (peak below
// trough after losses) is a real outcome and must flow through to the
// aggregate statistics unclamped.
func DailyMargin(s PriceSample, tech model.StorageTechParams) float64 {
	lossFactor := 1 - tech.HourlyLossRate*s.StorageHours
	if lossFactor < 0 {
		// Held long enough to lose everything; nothing to discharge.
		lossFactor = 0
	}
	deliverable := tech.CapacityKWh * tech.Efficiency * lossFactor

	revenue := deliverable * s.PeakPrice
	chargeCost := tech.CapacityKWh * s.TroughPrice

	margin := revenue - chargeCost
	if tech.Thermal {
		// Recycled heat from conversion losses is sold at the peak price.
		margin += (1 - tech.Efficiency) * tech.CapacityKWh * tech.HeatRecycling * s.PeakPrice
	}
	return margin
}
