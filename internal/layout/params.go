package layout

import (
	"errors"
	"fmt"
)

// Params are the simulation-wide physical constants.
type Params struct {
	NodeMass              float64 // default mass for nodes without one
	NodeCharge            float64 // default charge for nodes without one
	RepulsionCoefficient  float64
	MaxForce              float64 // clamp for repulsive force magnitude
	EdgeEquilibriumLength float64
	EdgeStiffness         float64
	// EffectiveDistance is the Barnes-Hut admissibility threshold (θ): a
	// region whose size/distance ratio falls below it is treated as a
	// single aggregate point.
	EffectiveDistance float64
	// MinRegionSize stops quad-tree subdivision once a region's side is
	// at most this long.
	MinRegionSize float64
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		NodeMass:              1,
		NodeCharge:            100,
		RepulsionCoefficient:  1,
		MaxForce:              1000,
		EdgeEquilibriumLength: 100,
		EdgeStiffness:         0.5,
		EffectiveDistance:     0.5,
		MinRegionSize:         1e-3,
	}
}

var ErrInvalidParams = errors.New("invalid layout params")

// Validate checks that the parameters describe a usable simulation.
func (p Params) Validate() error {
	switch {
	case !(p.NodeMass > 0):
		return fmt.Errorf("%w: node mass must be positive, got %v", ErrInvalidParams, p.NodeMass)
	case !(p.MaxForce > 0):
		return fmt.Errorf("%w: max force must be positive, got %v", ErrInvalidParams, p.MaxForce)
	case p.EdgeStiffness < 0:
		return fmt.Errorf("%w: edge stiffness must not be negative, got %v", ErrInvalidParams, p.EdgeStiffness)
	case p.EdgeEquilibriumLength < 0:
		return fmt.Errorf("%w: edge length must not be negative, got %v", ErrInvalidParams, p.EdgeEquilibriumLength)
	case p.EffectiveDistance < 0:
		return fmt.Errorf("%w: effective distance must not be negative, got %v", ErrInvalidParams, p.EffectiveDistance)
	case !(p.MinRegionSize > 0):
		return fmt.Errorf("%w: min region size must be positive, got %v", ErrInvalidParams, p.MinRegionSize)
	}
	return nil
}
