// Package vrp_test - route evaluation and solution aggregation.
package vrp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlroute/vrp"
)

func TestNewRoute_DistanceIsEdgeSum(t *testing.T) {
	data := smallData(t)

	r, err := vrp.NewRoute(data, 0, []int{1, 2})
	require.NoError(t, err)

	// depot→1→2→depot, all edges cost 4.
	assert.Equal(t, int64(12), r.Distance())
	assert.Equal(t, 2, r.NumClients())
	assert.Equal(t, 1, r.NumTrips())
	assert.Equal(t, int64(0), r.TimeWarp())
	assert.True(t, r.IsFeasible())
}

func TestNewRoute_ExcessLoad(t *testing.T) {
	data := smallData(t) // capacity 10, deliveries 5 and 3

	r, err := vrp.NewRoute(data, 0, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, r.ExcessLoad())

	// A second copy of client 1's delivery would not fit; emulate by a
	// tighter vehicle on the same instance.
	tight, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1000}},
		[]vrp.Client{
			{Delivery: []int64{5}, TWLate: 1000, Required: true, Group: -1},
			{Delivery: []int64{3}, TWLate: 1000, Required: true, Group: -1},
		},
		[]vrp.VehicleType{{NumAvailable: 1, Capacity: []int64{6}, TWLate: 1000}},
		[]*vrp.Matrix{square(3, 4)},
		[]*vrp.Matrix{square(3, 2)},
		nil,
	)
	require.NoError(t, err)

	r2, err := vrp.NewRoute(tight, 0, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, r2.ExcessLoad())
	assert.False(t, r2.IsFeasible())
}

func TestNewRoute_RejectsBadVisits(t *testing.T) {
	data := smallData(t)

	_, err := vrp.NewRoute(data, 0, []int{0}) // depot is not a reload depot
	assert.ErrorIs(t, err, vrp.ErrRouteVisit)

	_, err = vrp.NewRoute(data, 0, []int{99})
	assert.ErrorIs(t, err, vrp.ErrLocationIndex)
}

func TestNewRoute_TimeWarpAgainstWindows(t *testing.T) {
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1000}},
		[]vrp.Client{
			{TWEarly: 0, TWLate: 5, ServiceDuration: 2, Group: -1, Required: true},
			{TWEarly: 0, TWLate: 5, ServiceDuration: 2, Group: -1, Required: true},
		},
		[]vrp.VehicleType{{NumAvailable: 1, TWLate: 1000}},
		[]*vrp.Matrix{square(3, 1)},
		[]*vrp.Matrix{square(3, 10)}, // every leg takes 10
		nil,
	)
	require.NoError(t, err)

	r, err := vrp.NewRoute(data, 0, []int{1, 2})
	require.NoError(t, err)

	// Arriving at client 1 at t=10 is already 5 late; client 2 adds more.
	assert.Greater(t, r.TimeWarp(), int64(0))
	assert.False(t, r.IsFeasible())
}

func TestNewSolution_AggregatesAndNeighbours(t *testing.T) {
	data := smallData(t)

	r1, err := vrp.NewRoute(data, 0, []int{1})
	require.NoError(t, err)
	r2, err := vrp.NewRoute(data, 0, []int{2})
	require.NoError(t, err)

	sol, err := vrp.NewSolution(data, []vrp.Route{r1, r2})
	require.NoError(t, err)

	assert.Equal(t, int64(16), sol.Distance(), "two out-and-back routes of 8 each")
	assert.Equal(t, int64(16), sol.DistanceCost())
	assert.True(t, sol.IsFeasible())
	assert.Empty(t, sol.Unassigned())

	assert.Equal(t, 0, sol.RouteOf(1))
	assert.Equal(t, 1, sol.RouteOf(2))
	assert.Equal(t, 0, sol.PredOf(1), "preceded by the depot")
	assert.Equal(t, 0, sol.SuccOf(1))
}

func TestNewSolution_DuplicateClient(t *testing.T) {
	data := smallData(t)

	r1, err := vrp.NewRoute(data, 0, []int{1})
	require.NoError(t, err)
	r2, err := vrp.NewRoute(data, 0, []int{1})
	require.NoError(t, err)

	_, err = vrp.NewSolution(data, []vrp.Route{r1, r2})
	assert.ErrorIs(t, err, vrp.ErrSolutionInvariant)
}

func TestNewSolution_VehicleOveruse(t *testing.T) {
	data := smallData(t) // two vehicles available

	var routes []vrp.Route
	for loc := 1; loc <= 2; loc++ {
		r, err := vrp.NewRoute(data, 0, []int{loc})
		require.NoError(t, err)
		routes = append(routes, r)
	}
	// A third route of the same type, empty so that no client repeats.
	extra, err := vrp.NewRoute(data, 0, nil)
	require.NoError(t, err)
	routes = append(routes, extra)
	_, err = vrp.NewSolution(data, routes)
	assert.ErrorIs(t, err, vrp.ErrSolutionInvariant)
}

func TestNewSolution_MissingRequiredIsIncomplete(t *testing.T) {
	data := smallData(t)

	r1, err := vrp.NewRoute(data, 0, []int{1})
	require.NoError(t, err)

	sol, err := vrp.NewSolution(data, []vrp.Route{r1})
	require.NoError(t, err, "missing required client is infeasibility, not an error")
	assert.False(t, sol.IsComplete())
	assert.False(t, sol.IsFeasible())
	assert.Equal(t, []int{2}, sol.Unassigned())
}

func TestRandomSolution_Deterministic(t *testing.T) {
	data := smallData(t)

	a := vrp.RandomSolution(data, vrp.NewRNG(99))
	b := vrp.RandomSolution(data, vrp.NewRNG(99))

	require.Equal(t, a.NumRoutes(), b.NumRoutes())
	for i := range a.Routes() {
		assert.Equal(t, a.Routes()[i].Visits(), b.Routes()[i].Visits())
	}
	assert.True(t, a.IsComplete(), "random solutions serve every required client")
}

func TestRoute_StringRendersTrips(t *testing.T) {
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1000}},
		[]vrp.Client{
			{Delivery: []int64{5}, TWLate: 1000, Group: -1},
			{Delivery: []int64{5}, TWLate: 1000, Group: -1},
		},
		[]vrp.VehicleType{{
			NumAvailable: 1, Capacity: []int64{5}, TWLate: 1000,
			ReloadDepots: []int{0}, MaxReloads: 1,
		}},
		[]*vrp.Matrix{square(3, 1)},
		[]*vrp.Matrix{square(3, 1)},
		nil,
	)
	require.NoError(t, err)

	r, err := vrp.NewRoute(data, 0, []int{1, 0, 2})
	require.NoError(t, err)

	assert.Equal(t, "1 | 2", r.String())
	assert.Equal(t, 2, r.NumTrips())
	assert.Equal(t, []int64{0}, r.ExcessLoad(), "the reload resets the carried load")
}

func TestRoute_ReloadBudget(t *testing.T) {
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1000}},
		[]vrp.Client{{TWLate: 1000, Group: -1}},
		[]vrp.VehicleType{{
			NumAvailable: 1, TWLate: 1000, ReloadDepots: []int{0}, MaxReloads: 1,
		}},
		[]*vrp.Matrix{square(2, 1)},
		[]*vrp.Matrix{square(2, 1)},
		nil,
	)
	require.NoError(t, err)

	_, err = vrp.NewRoute(data, 0, []int{0, 1, 0})
	assert.ErrorIs(t, err, vrp.ErrRouteVisit, "two reloads exceed MaxReloads=1")
}
