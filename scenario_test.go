// Package lvlroute_test runs end-to-end solver scenarios: a classic
// 16-client capacitated instance, duration ceilings, multiple depots,
// prize collecting, pickups, zone-restricted profiles and reloading.
package lvlroute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlroute"
	"github.com/katalvlaran/lvlroute/genetic"
	"github.com/katalvlaran/lvlroute/stop"
	"github.com/katalvlaran/lvlroute/vrp"
)

// tutorialCoords are the depot (index 0) and 16 clients of the well-known
// OR-Tools routing tutorial, on its 114-unit grid.
var tutorialCoords = [][2]int64{
	{456, 320},
	{228, 0}, {912, 0}, {0, 80}, {114, 80}, {570, 160}, {798, 160},
	{342, 240}, {684, 240}, {570, 400}, {912, 400}, {114, 480},
	{228, 480}, {342, 560}, {684, 560}, {0, 640}, {798, 640},
}

// tutorialDemands[i] is the demand of location i (0 for the depot).
var tutorialDemands = []int64{0, 1, 1, 2, 4, 2, 4, 8, 8, 1, 2, 1, 2, 4, 4, 8, 8}

func manhattanMatrix(t *testing.T, coords [][2]int64) *vrp.Matrix {
	t.Helper()
	n := len(coords)
	rows := make([][]int64, n)
	for i := range rows {
		rows[i] = make([]int64, n)
		for j := range rows[i] {
			dx := coords[i][0] - coords[j][0]
			if dx < 0 {
				dx = -dx
			}
			dy := coords[i][1] - coords[j][1]
			if dy < 0 {
				dy = -dy
			}
			rows[i][j] = dx + dy
		}
	}
	m, err := vrp.NewMatrix(rows)
	require.NoError(t, err)
	return m
}

// testParams keeps runs short while still cycling the full machinery.
func testParams() genetic.Params {
	params := genetic.DefaultParams()
	params.Population.MinPopSize = 10
	params.Population.GenerationSize = 15
	params.Penalty.SolutionsBetweenUpdates = 20
	params.Neighbourhood.NumNeighbours = 10
	return params
}

func tutorialData(t *testing.T, vt vrp.VehicleType) *vrp.ProblemData {
	t.Helper()
	m := manhattanMatrix(t, tutorialCoords)

	clients := make([]vrp.Client, 16)
	for i := range clients {
		clients[i] = vrp.Client{
			X: tutorialCoords[i+1][0], Y: tutorialCoords[i+1][1],
			Delivery: []int64{tutorialDemands[i+1]},
			TWLate:   1_000_000, Required: true, Group: -1,
		}
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{X: 456, Y: 320, TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{vt},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)
	return data
}

// TestScenario_CVRP16 is the classic capacitated instance: 16 clients,
// four vehicles of capacity 15, Manhattan distances. The best known
// objective is 6208.
func TestScenario_CVRP16(t *testing.T) {
	data := tutorialData(t, vrp.VehicleType{
		NumAvailable: 4, Capacity: []int64{15},
		TWLate: 1_000_000, UnitDistanceCost: 1,
	})

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(3000), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	assert.True(t, res.Best.IsComplete())
	assert.LessOrEqual(t, res.Best.Distance(), int64(6208))

	// Spot-check the reported distance against the matrix, per route.
	m := data.DistanceMatrix(0)
	var total int64
	for _, r := range res.Best.Routes() {
		prev := 0
		for _, loc := range r.Visits() {
			total += m.At(prev, loc)
			prev = loc
		}
		total += m.At(prev, 0)
	}
	assert.Equal(t, total, res.Best.Distance())
}

// TestScenario_DurationCeiling caps route duration so one vehicle cannot
// serve everything; the best known split uses four routes of 1552 each.
func TestScenario_DurationCeiling(t *testing.T) {
	data := tutorialData(t, vrp.VehicleType{
		NumAvailable: 4, Capacity: []int64{15},
		TWLate: 1_000_000, UnitDistanceCost: 1, MaxDuration: 1900,
	})

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(1500), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	assert.LessOrEqual(t, res.Best.NumRoutes(), 4)
	assert.Equal(t, int64(0), res.Best.TimeWarp())
	for _, r := range res.Best.Routes() {
		assert.LessOrEqual(t, r.Duration(), int64(1900))
	}
}

// TestScenario_MultiDepot uses two depots with two vehicles each; every
// route starts and ends at its own depot and no time warp remains.
func TestScenario_MultiDepot(t *testing.T) {
	coords := [][2]int64{
		{0, 0}, {1000, 1000}, // two depots
		{100, 0}, {0, 100}, {200, 100}, // near depot 0
		{900, 1000}, {1000, 900}, {800, 900}, // near depot 1
	}
	m := manhattanMatrix(t, coords)

	clients := make([]vrp.Client, 6)
	for i := range clients {
		clients[i] = vrp.Client{TWLate: 1_000_000, Required: true, Group: -1}
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1_000_000}, {X: 1000, Y: 1000, TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{
			{NumAvailable: 2, StartDepot: 0, EndDepot: 0, TWLate: 1_000_000, UnitDistanceCost: 1},
			{NumAvailable: 2, StartDepot: 1, EndDepot: 1, TWLate: 1_000_000, UnitDistanceCost: 1},
		},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(400), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	assert.Equal(t, int64(0), res.Best.TimeWarp())
	for _, r := range res.Best.Routes() {
		vt := data.VehicleType(r.VehicleType())
		assert.Equal(t, vt.StartDepot, vt.EndDepot, "every route returns to its own depot")
	}
}

// TestScenario_PrizeCollecting leaves an optional client unserved when
// the round trip to it exceeds its prize.
func TestScenario_PrizeCollecting(t *testing.T) {
	coords := [][2]int64{
		{0, 0},
		{10, 0}, {0, 10}, {10, 10},
		{5000, 5000}, // far out
	}
	m := manhattanMatrix(t, coords)

	clients := []vrp.Client{
		{TWLate: 1_000_000, Prize: 500, Group: -1},
		{TWLate: 1_000_000, Prize: 500, Group: -1},
		{TWLate: 1_000_000, Prize: 500, Group: -1},
		{TWLate: 1_000_000, Prize: 300, Group: -1}, // round trip 20000
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{{NumAvailable: 2, TWLate: 1_000_000, UnitDistanceCost: 1}},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(300), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	assert.Contains(t, res.Best.Unassigned(), 4, "the far client's prize cannot pay its detour")
	for _, near := range []int{1, 2, 3} {
		assert.NotEqual(t, -1, res.Best.RouteOf(near), "cheap prizes are collected")
	}
}

// TestScenario_PickupDelivery verifies that the maximum in-vehicle load
// over every trip prefix stays within capacity.
func TestScenario_PickupDelivery(t *testing.T) {
	coords := [][2]int64{
		{0, 0},
		{10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0}, {60, 0},
	}
	m := manhattanMatrix(t, coords)

	clients := []vrp.Client{
		{Delivery: []int64{8}, TWLate: 1_000_000, Required: true, Group: -1},
		{Pickup: []int64{7}, TWLate: 1_000_000, Required: true, Group: -1},
		{Delivery: []int64{5}, TWLate: 1_000_000, Required: true, Group: -1},
		{Pickup: []int64{6}, TWLate: 1_000_000, Required: true, Group: -1},
		{Delivery: []int64{4}, TWLate: 1_000_000, Required: true, Group: -1},
		{Pickup: []int64{4}, TWLate: 1_000_000, Required: true, Group: -1},
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{{
			NumAvailable: 3, Capacity: []int64{15},
			TWLate: 1_000_000, UnitDistanceCost: 1,
		}},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(400), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	for _, r := range res.Best.Routes() {
		for _, tripLoad := range r.TripLoads() {
			for _, load := range tripLoad {
				assert.LessOrEqual(t, load, int64(15),
					"maximum carried load within capacity on every trip")
			}
		}
	}
}

// TestScenario_ZoneRestricted runs two routing profiles where the second
// profile cannot economically enter a zone, and the zone's clients only
// admit vehicles of the first type.
func TestScenario_ZoneRestricted(t *testing.T) {
	coords := [][2]int64{
		{0, 0},
		{10, 10}, {20, 10}, // inside the restricted zone
		{10, 200}, {20, 200}, // outside
	}
	open := manhattanMatrix(t, coords)

	// The restricted profile prices every edge entering the zone at 1000.
	restrictedRows := make([][]int64, len(coords))
	for i := range restrictedRows {
		restrictedRows[i] = make([]int64, len(coords))
		for j := range restrictedRows[i] {
			d := open.At(i, j)
			if j == 1 || j == 2 {
				d = 1000
			}
			restrictedRows[i][j] = d
		}
	}
	restricted, err := vrp.NewMatrix(restrictedRows)
	require.NoError(t, err)

	clients := []vrp.Client{
		{TWLate: 1_000_000, Required: true, Group: -1, AllowedVehicles: []int{0}},
		{TWLate: 1_000_000, Required: true, Group: -1, AllowedVehicles: []int{0}},
		{TWLate: 1_000_000, Required: true, Group: -1},
		{TWLate: 1_000_000, Required: true, Group: -1},
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{
			{NumAvailable: 1, TWLate: 1_000_000, UnitDistanceCost: 1, Profile: 0},
			{NumAvailable: 1, TWLate: 1_000_000, UnitDistanceCost: 1, Profile: 1},
		},
		[]*vrp.Matrix{open, restricted},
		[]*vrp.Matrix{open, restricted},
		nil,
	)
	require.NoError(t, err)

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(400), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible)
	for _, r := range res.Best.Routes() {
		if r.VehicleType() != 1 {
			continue
		}
		for _, loc := range r.Visits() {
			assert.NotContains(t, []int{1, 2}, loc,
				"the restricted profile never serves zone clients")
		}
	}
}

// TestScenario_Reload needs more demand than one tank: three deliveries
// of 11 against capacity 15 cannot share a trip, so the single vehicle
// must reload twice.
func TestScenario_Reload(t *testing.T) {
	coords := [][2]int64{
		{0, 0}, {5, 5},
		{10, 0}, {20, 0}, {30, 0},
	}
	m := manhattanMatrix(t, coords)

	clients := make([]vrp.Client, 3)
	for i := range clients {
		clients[i] = vrp.Client{
			Delivery: []int64{11}, TWLate: 1_000_000, Required: true, Group: -1,
		}
	}
	data, err := vrp.NewProblemData(
		[]vrp.Depot{{TWLate: 1_000_000}, {X: 5, Y: 5, TWLate: 1_000_000}},
		clients,
		[]vrp.VehicleType{{
			NumAvailable: 1, Capacity: []int64{15},
			TWLate: 1_000_000, UnitDistanceCost: 1,
			ReloadDepots: []int{0, 1}, MaxReloads: 2,
		}},
		[]*vrp.Matrix{m},
		[]*vrp.Matrix{m},
		nil,
	)
	require.NoError(t, err)

	res, err := lvlroute.Solve(data, 1, stop.MaxIterations(600), lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.True(t, res.BestIsFeasible, "reloading makes the instance feasible")
	require.Equal(t, 1, res.Best.NumRoutes())
	route := res.Best.Routes()[0]
	assert.GreaterOrEqual(t, route.NumReloads(), 2,
		"33 units of demand cannot move in fewer than three trips of 15")
	assert.Equal(t, 3, route.NumClients(), "every client is delivered")
}

// TestSolve_Deterministic re-runs the full solver with one seed and
// expects bit-identical best routes.
func TestSolve_Deterministic(t *testing.T) {
	data := tutorialData(t, vrp.VehicleType{
		NumAvailable: 4, Capacity: []int64{15},
		TWLate: 1_000_000, UnitDistanceCost: 1,
	})

	run := func() *vrp.Solution {
		res, err := lvlroute.Solve(data, 7, stop.MaxIterations(120), lvlroute.WithParams(testParams()))
		require.NoError(t, err)
		return res.Best
	}
	a, b := run(), run()

	require.Equal(t, a.NumRoutes(), b.NumRoutes())
	for i := range a.Routes() {
		assert.Equal(t, a.Routes()[i].Visits(), b.Routes()[i].Visits())
	}
	assert.Equal(t, a.Distance(), b.Distance())
}

// TestSolve_StopByNoImprovement exercises the stagnation criterion
// end-to-end.
func TestSolve_StopByNoImprovement(t *testing.T) {
	data := tutorialData(t, vrp.VehicleType{
		NumAvailable: 4, Capacity: []int64{15},
		TWLate: 1_000_000, UnitDistanceCost: 1,
	})

	criterion := stop.Any(stop.NoImprovement(50), stop.MaxIterations(2000))
	res, err := lvlroute.Solve(data, 3, criterion, lvlroute.WithParams(testParams()))
	require.NoError(t, err)

	require.NotNil(t, res.Best)
	assert.True(t, res.Best.IsFeasible())
	assert.Less(t, res.Iterations, 2000, "stagnation stops before the hard cap")
}
