// Package genetic - solution diversity measure.
package genetic

import "github.com/katalvlaran/lvlroute/vrp"

// BrokenPairsDistance returns the fraction of clients whose predecessor or
// successor differs between the two solutions. Depot neighbours all count
// as one and the same "depot"; an unplanned client only matches another
// unplanned client. Symmetric, zero on identical solutions, at most one.
//
// Complexity: O(clients).
func BrokenPairsDistance(data *vrp.ProblemData, a, b *vrp.Solution) float64 {
	numClients := data.NumClients()
	if numClients == 0 {
		return 0
	}

	norm := func(loc int) int {
		if loc >= 0 && data.IsDepot(loc) {
			return -2 // any depot
		}
		return loc
	}

	broken := 0
	for loc := data.NumDepots(); loc < data.NumLocations(); loc++ {
		if norm(a.PredOf(loc)) != norm(b.PredOf(loc)) || norm(a.SuccOf(loc)) != norm(b.SuccOf(loc)) {
			broken++
		}
	}
	return float64(broken) / float64(numClients)
}
