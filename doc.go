// Package lvlroute is a hybrid genetic search solver for rich vehicle
// routing problems.
//
// 🚚 What is lvlroute?
//
//	An in-memory, deterministic metaheuristic engine for fleets serving
//	geographically distributed clients under real-world constraints:
//	  • Capacities (multiple load dimensions, pickups and deliveries)
//	  • Time windows, service durations and release times
//	  • Multiple depots, shift windows, route duration/distance ceilings
//	  • Optional visits with prizes (prize collecting)
//	  • Heterogeneous fleets with per-type routing profiles
//	  • Mid-route reloading at depots
//
// ✨ Why choose lvlroute?
//
//   - Constant-time move evaluation – associative segment summaries make
//     node moves between routes of the same vehicle type O(1) to price,
//     whatever the route length; splices across vehicle types are priced
//     by a full O(L) evaluation
//   - Deterministic – one seeded RNG per run; same seed, same solution
//   - Pure Go, integer arithmetic – no cgo, no floating point drift
//   - Composable – each stage is its own package with a narrow API
//
// Everything is organized under five subpackages:
//
//	vrp/     — problem data, segment algebra, cost evaluation, solutions
//	search/  — granular local search: node, route and depot operators
//	genetic/ — penalties, population, crossover, the generation loop
//	stop/    — stopping criteria (iterations, runtime, stagnation)
//	stats/   — per-generation statistics and Prometheus export
//
// Quick example:
//
//	data, err := vrp.NewProblemData(depots, clients, types, dists, durs, nil)
//	if err != nil { ... }
//	result, err := lvlroute.Solve(data, 42, stop.MaxIterations(5_000))
//	if err != nil { ... }
//	for _, route := range result.Best.Routes() { ... }
//
// See DESIGN.md for the architecture notes and each package's doc.go for
// the full contracts.
package lvlroute
