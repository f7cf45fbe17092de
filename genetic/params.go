// Package genetic - parameter sets and YAML presets.
//
// Every knob of the orchestrator lives in one of the structs below, each
// with a Default constructor. LoadParams reads a tuned preset from YAML;
// absent fields keep their defaults, so presets only list what they
// change.
package genetic

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvlroute/search"
)

// ErrBadParams is returned when a parameter value is out of its domain.
var ErrBadParams = errors.New("genetic: parameter out of range")

// PenaltyParams governs penalty self-adaptation. See PenaltyManager.
type PenaltyParams struct {
	// RepairBooster multiplies the current penalties in the boosted
	// evaluator used for repair passes. Must be >= 1.
	RepairBooster int64 `yaml:"repair_booster"`

	// SolutionsBetweenUpdates is the sliding-window length: penalties
	// update once this many offspring have been registered.
	SolutionsBetweenUpdates int `yaml:"solutions_between_updates"`

	// IncreaseFactor (>= 1) scales a penalty up when too few feasible
	// offspring were seen; the decrease divides by the same factor.
	IncreaseFactor float64 `yaml:"increase_factor"`

	// TargetFeasible is the desired fraction of feasible offspring.
	TargetFeasible float64 `yaml:"target_feasible"`

	// FeasTolerance is the dead zone around TargetFeasible within which
	// penalties stay untouched.
	FeasTolerance float64 `yaml:"feas_tolerance"`

	// MinPenalty and MaxPenalty clamp every coefficient.
	MinPenalty int64 `yaml:"min_penalty"`
	MaxPenalty int64 `yaml:"max_penalty"`
}

// DefaultPenaltyParams returns the default penalty parameters.
func DefaultPenaltyParams() PenaltyParams {
	return PenaltyParams{
		RepairBooster:           12,
		SolutionsBetweenUpdates: 50,
		IncreaseFactor:          1.3,
		TargetFeasible:          0.2,
		FeasTolerance:           0.05,
		MinPenalty:              1,
		MaxPenalty:              1_000_000,
	}
}

func (p PenaltyParams) validate() error {
	if p.RepairBooster < 1 || p.SolutionsBetweenUpdates < 1 ||
		p.IncreaseFactor < 1 ||
		p.TargetFeasible < 0 || p.TargetFeasible > 1 ||
		p.FeasTolerance < 0 || p.FeasTolerance > 1 ||
		p.MinPenalty < 0 || p.MaxPenalty < p.MinPenalty {
		return ErrBadParams
	}
	return nil
}

// PopulationParams governs sub-population sizes and biased fitness.
type PopulationParams struct {
	// MinPopSize is the size each sub-population shrinks back to after a
	// purge.
	MinPopSize int `yaml:"min_pop_size"`

	// GenerationSize is the headroom above MinPopSize before purging.
	GenerationSize int `yaml:"generation_size"`

	// NumElite is the neighbourhood size of the diversity rank and the
	// elite weight of the fitness blend (capped at the sub-pop size).
	NumElite int `yaml:"num_elite"`
}

// DefaultPopulationParams returns the default population parameters.
func DefaultPopulationParams() PopulationParams {
	return PopulationParams{
		MinPopSize:     25,
		GenerationSize: 40,
		NumElite:       5,
	}
}

func (p PopulationParams) validate() error {
	if p.MinPopSize < 1 || p.GenerationSize < 1 || p.NumElite < 1 {
		return ErrBadParams
	}
	return nil
}

// Params bundles every parameter of the genetic algorithm.
type Params struct {
	// RepairProbability is the chance an infeasible educated offspring
	// gets a second, boosted-penalty education pass.
	RepairProbability float64 `yaml:"repair_probability"`

	// RestartIterations triggers a population restart after this many
	// consecutive iterations without improving the best solution.
	RestartIterations int `yaml:"restart_iterations"`

	Penalty       PenaltyParams              `yaml:"penalty"`
	Population    PopulationParams           `yaml:"population"`
	Neighbourhood search.NeighbourhoodParams `yaml:"neighbourhood"`
}

// DefaultParams returns the default genetic algorithm parameters.
func DefaultParams() Params {
	return Params{
		RepairProbability: 0.5,
		RestartIterations: 20_000,
		Penalty:           DefaultPenaltyParams(),
		Population:        DefaultPopulationParams(),
		Neighbourhood:     search.DefaultNeighbourhoodParams(),
	}
}

// Validate checks every parameter domain.
func (p Params) Validate() error {
	if p.RepairProbability < 0 || p.RepairProbability > 1 || p.RestartIterations < 1 {
		return ErrBadParams
	}
	if err := p.Penalty.validate(); err != nil {
		return err
	}
	return p.Population.validate()
}

// LoadParams reads a YAML preset, layering it over the defaults.
func LoadParams(r io.Reader) (Params, error) {
	params := DefaultParams()
	raw, err := io.ReadAll(r)
	if err != nil {
		return Params{}, err
	}
	if err = yaml.Unmarshal(raw, &params); err != nil {
		return Params{}, err
	}
	if err = params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}
