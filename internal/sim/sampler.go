package sim

import (
	"fmt"

	"golang.org/x/exp/rand"

	"storage-npv/internal/model"
)

// PriceSample is one simulated day's market draw.
type PriceSample struct {
	PeakPrice   float64
	TroughPrice float64
	// StorageHours is how long the charged energy sits before discharge.
	StorageHours float64
}

// PriceSampler draws independent (peak, trough, storage-duration) triplets
// from the configured distributions. One sampler per trial; the sampler
// owns no shared state beyond its random source.
type PriceSampler struct {
	peak    model.Sampler
	trough  model.Sampler
	storage model.Sampler
}

// NewPriceSampler validates the price parameters and binds them to a random
// source. Configuration errors (including peak mean < trough mean) surface
// here, before any sample is drawn.
func NewPriceSampler(p model.PriceParams, src rand.Source) (*PriceSampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	peak, err := p.Peak.NewSampler(src)
	if err != nil {
		return nil, fmt.Errorf("peak: %w", err)
	}
	trough, err := p.Trough.NewSampler(src)
	if err != nil {
		return nil, fmt.Errorf("trough: %w", err)
	}
	storage, err := p.StorageHours.NewSampler(src)
	if err != nil {
		return nil, fmt.Errorf("storage_hours: %w", err)
	}
	return &PriceSampler{peak: peak, trough: trough, storage: storage}, nil
}

// Sample draws one day. Prices are floored at zero: a negative draw (possible
// with a normal distribution) is clamped, since a wholesale price below zero
// is outside this model's domain. The clamp is a deliberate floor, not lost
// data; wide-spread normal configs will show a point mass at 0.
func (s *PriceSampler) Sample() PriceSample {
	return PriceSample{
		PeakPrice:    clampFloor(s.peak.Rand(), 0),
		TroughPrice:  clampFloor(s.trough.Rand(), 0),
		StorageHours: clampFloor(s.storage.Rand(), 0),
	}
}

func clampFloor(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}
