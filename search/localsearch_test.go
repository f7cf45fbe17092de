// Package search_test - the descent engine.
package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlroute/search"
	"github.com/katalvlaran/lvlroute/vrp"
)

func engine(t *testing.T, data *vrp.ProblemData, seed int64) *search.LocalSearch {
	t.Helper()
	params := search.DefaultNeighbourhoodParams()
	return search.NewLocalSearch(data, vrp.NewRNG(seed), search.ComputeNeighbours(data, params))
}

func defaultEvaluator() vrp.CostEvaluator {
	return vrp.NewCostEvaluator([]int64{20}, 6, 6, 6)
}

func TestLocalSearch_NeverWorsens(t *testing.T) {
	data := lineData(t, 8)
	ce := defaultEvaluator()

	sol := vrp.RandomSolution(data, vrp.NewRNG(3))
	improved := engine(t, data, 3).Run(sol, ce)

	assert.LessOrEqual(t, ce.PenalisedCost(improved), ce.PenalisedCost(sol))
	assert.True(t, improved.IsComplete(), "required clients must stay planned")
}

func TestLocalSearch_Improves(t *testing.T) {
	data := lineData(t, 8)
	ce := defaultEvaluator()

	// A deliberately bad single route: farthest client first, zig-zag.
	r, err := vrp.NewRoute(data, 0, []int{8, 1, 7, 2, 6, 3, 5, 4})
	require.NoError(t, err)
	sol, err := vrp.NewSolution(data, []vrp.Route{r})
	require.NoError(t, err)

	improved := engine(t, data, 1).Run(sol, ce)
	assert.Less(t, ce.PenalisedCost(improved), ce.PenalisedCost(sol))
}

func TestLocalSearch_Idempotent(t *testing.T) {
	data := lineData(t, 8)
	ce := defaultEvaluator()

	ls := engine(t, data, 7)
	once := ls.Run(vrp.RandomSolution(data, vrp.NewRNG(7)), ce)
	twice := ls.Run(once, ce)

	assert.Equal(t, ce.PenalisedCost(once), ce.PenalisedCost(twice),
		"a locally optimal solution must come back unchanged")
	require.Equal(t, once.NumRoutes(), twice.NumRoutes())
}

func TestLocalSearch_Deterministic(t *testing.T) {
	data := lineData(t, 8)
	ce := defaultEvaluator()

	run := func() *vrp.Solution {
		return engine(t, data, 42).Run(vrp.RandomSolution(data, vrp.NewRNG(42)), ce)
	}
	a, b := run(), run()

	require.Equal(t, a.NumRoutes(), b.NumRoutes())
	for i := range a.Routes() {
		assert.Equal(t, a.Routes()[i].Visits(), b.Routes()[i].Visits())
	}
}

func TestLocalSearch_DropsUnprofitableOptional(t *testing.T) {
	// One remote optional client whose round trip costs far more than its
	// prize, one near client worth serving.
	dist := [][]int64{
		{0, 5, 1000},
		{5, 0, 1000},
		{1000, 1000, 0},
	}
	m, err := vrp.NewMatrix(dist)
	require.NoError(t, err)

	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 100_000}},
		[]vrp.Client{
			{TWLate: 100_000, Prize: 50, Group: -1},
			{TWLate: 100_000, Prize: 100, Group: -1},
		},
		[]vrp.VehicleType{{NumAvailable: 1, TWLate: 100_000, UnitDistanceCost: 1}},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	r, err := vrp.NewRoute(data, 0, []int{1, 2})
	require.NoError(t, err)
	sol, err := vrp.NewSolution(data, []vrp.Route{r})
	require.NoError(t, err)

	ce := vrp.NewCostEvaluator(nil, 1, 1, 1)
	improved := engine(t, data, 1).Run(sol, ce)

	assert.Contains(t, improved.Unassigned(), 2, "2000 of travel for a prize of 100 must be dropped")
	assert.Equal(t, -1, improved.RouteOf(2))
	assert.Equal(t, 0, improved.RouteOf(1), "the near client stays")
}

func TestLocalSearch_InsertsProfitableOptional(t *testing.T) {
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 100_000}},
		[]vrp.Client{
			{TWLate: 100_000, Prize: 500, Group: -1},
			{TWLate: 100_000, Prize: 500, Group: -1},
		},
		[]vrp.VehicleType{{NumAvailable: 1, TWLate: 100_000, UnitDistanceCost: 1}},
		[]*vrp.Matrix{vrp.ZeroMatrix(3)},
		[]*vrp.Matrix{vrp.ZeroMatrix(3)},
		nil,
	)
	require.NoError(t, err)

	empty, err := vrp.NewSolution(data, nil)
	require.NoError(t, err)

	ce := vrp.NewCostEvaluator(nil, 1, 1, 1)
	improved := engine(t, data, 1).Run(empty, ce)

	assert.Empty(t, improved.Unassigned(), "free-to-serve prizes must be collected")
}

func TestLocalSearch_ResolvesExcessWithReload(t *testing.T) {
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 100_000}},
		[]vrp.Client{
			{Delivery: []int64{5}, TWLate: 100_000, Group: -1, Required: true},
			{Delivery: []int64{5}, TWLate: 100_000, Group: -1, Required: true},
		},
		[]vrp.VehicleType{{
			NumAvailable: 1, Capacity: []int64{5}, TWLate: 100_000,
			ReloadDepots: []int{0}, MaxReloads: 2, UnitDistanceCost: 1,
		}},
		[]*vrp.Matrix{vrp.ZeroMatrix(3)},
		[]*vrp.Matrix{vrp.ZeroMatrix(3)},
		nil,
	)
	require.NoError(t, err)

	r, err := vrp.NewRoute(data, 0, []int{1, 2})
	require.NoError(t, err)
	sol, err := vrp.NewSolution(data, []vrp.Route{r})
	require.NoError(t, err)
	require.False(t, sol.IsFeasible())

	ce := vrp.NewCostEvaluator([]int64{500}, 1, 1, 1)
	improved := engine(t, data, 1).Run(sol, ce)

	assert.True(t, improved.IsFeasible(), "a reload stop resolves the excess for free")
	require.Equal(t, 1, improved.NumRoutes())
	assert.GreaterOrEqual(t, improved.Routes()[0].NumReloads(), 1)
}

func TestLocalSearch_SplitsIntoRoutesUnderTightCapacity(t *testing.T) {
	// Eight clients of demand 2 and capacity 4: at least four routes are
	// needed; the engine must open empty routes to shed excess load.
	coordDist := func(i, j int) int64 {
		d := int64(i-j) * 10
		if d < 0 {
			d = -d
		}
		return d
	}
	n := 9
	rows := make([][]int64, n)
	for i := range rows {
		rows[i] = make([]int64, n)
		for j := range rows[i] {
			rows[i][j] = coordDist(i, j)
		}
	}
	m, err := vrp.NewMatrix(rows)
	require.NoError(t, err)

	clients := make([]vrp.Client, 8)
	for i := range clients {
		clients[i] = vrp.Client{Delivery: []int64{2}, TWLate: 100_000, Required: true, Group: -1}
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 100_000}},
		clients,
		[]vrp.VehicleType{{
			NumAvailable: 4, Capacity: []int64{4},
			TWLate: 100_000, UnitDistanceCost: 1,
		}},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	// Start from everything on one vehicle.
	r, err := vrp.NewRoute(data, 0, []int{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	sol, err := vrp.NewSolution(data, []vrp.Route{r})
	require.NoError(t, err)

	ce := vrp.NewCostEvaluator([]int64{1000}, 6, 6, 6)
	improved := engine(t, data, 9).Run(sol, ce)

	assert.True(t, improved.IsFeasible())
	assert.Equal(t, 4, improved.NumRoutes())
}
