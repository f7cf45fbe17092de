// Package stop provides stopping criteria for the solver loop.
//
// A criterion is polled with the best objective seen so far and answers
// whether the search should halt. Implementations latch: once a criterion
// has answered true it keeps answering true, so callers may poll at any
// boundary (each generation, and optionally between operator passes)
// without risking a flapping signal.
//
//	crit := stop.MaxIterations(10_000)
//	for !crit.ShouldStop(best) { ... }
//
// Criteria are plain counters and clocks; they are not goroutine-safe.
package stop

import "time"

// Criterion decides when the search halts. ShouldStop is called once per
// poll with the current best (penalised) objective; the returned signal is
// monotone: true stays true.
type Criterion interface {
	ShouldStop(best int64) bool
}

type maxIterations struct {
	remaining int
	stopped   bool
}

// MaxIterations stops after n polls.
func MaxIterations(n int) Criterion { return &maxIterations{remaining: n} }

func (c *maxIterations) ShouldStop(int64) bool {
	if c.stopped {
		return true
	}
	c.remaining--
	c.stopped = c.remaining < 0
	return c.stopped
}

type maxRuntime struct {
	deadline time.Time
	started  bool
	limit    time.Duration
	stopped  bool
}

// MaxRuntime stops once the wall clock has advanced by d since the first
// poll.
func MaxRuntime(d time.Duration) Criterion { return &maxRuntime{limit: d} }

func (c *maxRuntime) ShouldStop(int64) bool {
	if c.stopped {
		return true
	}
	if !c.started {
		c.started = true
		c.deadline = time.Now().Add(c.limit)
		return false
	}
	c.stopped = time.Now().After(c.deadline)
	return c.stopped
}

type noImprovement struct {
	limit   int
	counter int
	best    int64
	seeded  bool
	stopped bool
}

// NoImprovement stops after n consecutive polls without a strictly better
// best objective.
func NoImprovement(n int) Criterion { return &noImprovement{limit: n} }

func (c *noImprovement) ShouldStop(best int64) bool {
	if c.stopped {
		return true
	}
	if !c.seeded || best < c.best {
		c.seeded = true
		c.best = best
		c.counter = 0
		return false
	}
	c.counter++
	c.stopped = c.counter >= c.limit
	return c.stopped
}

type multiple struct {
	criteria []Criterion
	all      bool
	stopped  bool
}

// Any stops as soon as one of the criteria stops. Every criterion is
// polled on every call so time- and count-based criteria stay in step.
func Any(criteria ...Criterion) Criterion { return &multiple{criteria: criteria} }

// All stops once every criterion has stopped.
func All(criteria ...Criterion) Criterion { return &multiple{criteria: criteria, all: true} }

func (c *multiple) ShouldStop(best int64) bool {
	if c.stopped {
		return true
	}
	hits := 0
	for _, crit := range c.criteria {
		if crit.ShouldStop(best) {
			hits++
		}
	}
	if c.all {
		c.stopped = hits == len(c.criteria)
	} else {
		c.stopped = hits > 0
	}
	return c.stopped
}
