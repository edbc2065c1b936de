package model

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistKind identifies a supported sampling distribution. The set is closed
// on purpose: every kind here has documented parameters and a deterministic
// mapping onto a sampler, so a config file cannot smuggle in arbitrary
// runtime behavior.
type DistKind string

const (
	// DistUniform draws from [Mean-Spread, Mean+Spread].
	DistUniform DistKind = "uniform"
	// DistNormal draws from N(Mean, Spread²).
	DistNormal DistKind = "normal"
)

// Distribution is a (kind, mean, spread) triple describing one randomized
// input. For uniform, Spread is the half-width; for normal, the standard
// deviation.
type Distribution struct {
	Kind   DistKind `yaml:"kind" json:"kind"`
	Mean   float64  `yaml:"mean" json:"mean"`
	Spread float64  `yaml:"spread" json:"spread"`
}

// Sampler yields one draw per call. Both distuv.Uniform and distuv.Normal
// satisfy it directly.
type Sampler interface {
	Rand() float64
}

func (d Distribution) Validate() error {
	switch d.Kind {
	case DistUniform, DistNormal:
	default:
		return fmt.Errorf("%w: unsupported distribution kind %q", ErrInvalidParameter, d.Kind)
	}
	if d.Spread < 0 {
		return fmt.Errorf("%w: distribution spread must be >= 0, got %v", ErrInvalidParameter, d.Spread)
	}
	return nil
}

// NewSampler binds the distribution to a random source. The source is owned
// by the caller; one source per trial keeps draws independent across trials.
func (d Distribution) NewSampler(src rand.Source) (Sampler, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.Kind {
	case DistUniform:
		return distuv.Uniform{Min: d.Mean - d.Spread, Max: d.Mean + d.Spread, Src: src}, nil
	case DistNormal:
		// distuv.Normal requires sigma > 0; represent a degenerate normal
		// as a zero-width uniform so spread=0 still means "constant".
		if d.Spread == 0 {
			return distuv.Uniform{Min: d.Mean, Max: d.Mean, Src: src}, nil
		}
		return distuv.Normal{Mu: d.Mean, Sigma: d.Spread, Src: src}, nil
	}
	return nil, fmt.Errorf("%w: unsupported distribution kind %q", ErrInvalidParameter, d.Kind)
}

// UniformFromRange converts a [min, max] range (the shape used by market
// benchmark tables) into the mean/spread form.
func UniformFromRange(min, max float64) Distribution {
	return Distribution{
		Kind:   DistUniform,
		Mean:   (min + max) / 2,
		Spread: (max - min) / 2,
	}
}
