// Package vrp_test exercises the segment algebra via the public API.
// Focus: the exact merge formula, associativity of both segment kinds,
// and excess/route-level derived values.
package vrp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlroute/vrp"
)

// TestDurationSegment_MergeLiteral pins the merge formula on a small
// hand-computed example: two clients 5 apart, the second opening after
// the first closes.
func TestDurationSegment_MergeLiteral(t *testing.T) {
	first := vrp.NewDurationSegment(10, 0, 20, 0)  // service 10, window [0, 20]
	second := vrp.NewDurationSegment(5, 40, 50, 0) // service 5, window [40, 50]

	merged := first.Merge(5, second)

	// Departing as late as possible (t=20) still means arriving at 35 and
	// waiting 5 until the second window opens; no time warp is possible.
	assert.Equal(t, int64(10+5+5+5), merged.Duration, "duration includes the unavoidable wait")
	assert.Equal(t, int64(0), merged.TimeWarp)
	// Any start before 20 only adds waiting; the merged window pins to 20.
	assert.Equal(t, int64(20), merged.TWEarly)
	assert.Equal(t, int64(20), merged.TWLate)
}

// TestDurationSegment_MergeTimeWarp verifies warp when the second window
// closes before the earliest possible arrival.
func TestDurationSegment_MergeTimeWarp(t *testing.T) {
	first := vrp.NewDurationSegment(10, 30, 30, 0) // fixed start at 30
	second := vrp.NewDurationSegment(0, 0, 35, 0)  // closes at 35

	merged := first.Merge(10, second)

	// Arrival is 30+10+10 = 50, which is 15 past twLate of the second.
	assert.Equal(t, int64(15), merged.TimeWarp)
}

// TestDurationSegment_Associativity checks (A⊕B)⊕C == A⊕(B⊕C) on a grid
// of deterministic windows, for every summary field.
func TestDurationSegment_Associativity(t *testing.T) {
	rng := vrp.NewRNG(7)
	for trial := 0; trial < 500; trial++ {
		segs := make([]vrp.DurationSegment, 3)
		for i := range segs {
			early := rng.Int64n(100)
			segs[i] = vrp.NewDurationSegment(rng.Int64n(20), early, early+rng.Int64n(80), rng.Int64n(50))
		}
		e1 := rng.Int64n(30)
		e2 := rng.Int64n(30)

		left := segs[0].Merge(e1, segs[1]).Merge(e2, segs[2])
		right := segs[0].Merge(e1, segs[1].Merge(e2, segs[2]))

		require.Equal(t, left, right, "trial %d: merge must be associative", trial)
	}
}

// TestLoadSegment_Merge pins the load concatenation rule.
func TestLoadSegment_Merge(t *testing.T) {
	a := vrp.NewLoadSegment(5, 2) // deliver 5, pick up 2
	b := vrp.NewLoadSegment(3, 4)

	m := a.Merge(b)
	assert.Equal(t, int64(8), m.Delivery)
	assert.Equal(t, int64(6), m.Pickup)
	// max(load_a + delivery_b, load_b + pickup_a) = max(5+3, 4+2) = 8.
	assert.Equal(t, int64(8), m.Load)
}

// TestLoadSegment_Associativity checks the load merge on random triples.
func TestLoadSegment_Associativity(t *testing.T) {
	rng := vrp.NewRNG(11)
	for trial := 0; trial < 500; trial++ {
		a := vrp.NewLoadSegment(rng.Int64n(10), rng.Int64n(10))
		b := vrp.NewLoadSegment(rng.Int64n(10), rng.Int64n(10))
		c := vrp.NewLoadSegment(rng.Int64n(10), rng.Int64n(10))

		require.Equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)), "trial %d", trial)
	}
}

// TestLoadSegment_Excess covers the capacity boundary.
func TestLoadSegment_Excess(t *testing.T) {
	s := vrp.NewLoadSegment(10, 0)
	assert.Equal(t, int64(0), s.Excess(10), "at capacity is not excess")
	assert.Equal(t, int64(3), s.Excess(7))
}

// TestDurationSegment_RouteTimeWarp verifies the release-time correction.
func TestDurationSegment_RouteTimeWarp(t *testing.T) {
	seg := vrp.DurationSegment{Duration: 10, TimeWarp: 4, TWEarly: 0, TWLate: 20, Release: 35}
	// The release pushes the departure 15 past the latest start.
	assert.Equal(t, int64(4+15), seg.RouteTimeWarp())

	seg.Release = 5
	assert.Equal(t, int64(4), seg.RouteTimeWarp(), "release within the window adds nothing")
}
