// Package vrp holds the data model and cost machinery of the routing solver.
//
// 🚚 What lives here?
//
//	ProblemData     — the immutable instance: depots, clients, client groups,
//	                  vehicle types and per-profile distance/duration matrices.
//	DurationSegment — associative summary of travel, service, waiting and
//	                  time warp over a contiguous visit sequence. Merging two
//	                  summaries over a connecting edge is O(1), which is what
//	                  makes constant-time move evaluation possible.
//	LoadSegment     — associative pickup/delivery summary per load dimension.
//	CostEvaluator   — combines distance, duration, fixed vehicle cost,
//	                  uncollected prizes and penalised constraint violations
//	                  into a single int64 objective.
//	Route, Solution — immutable snapshots of a routing, with aggregate
//	                  attributes and a per-client neighbour table.
//	RNG             — the solver-wide deterministic random number generator.
//
// ✨ Conventions:
//   - All quantities are signed 64-bit integers; callers scale fractional
//     inputs before construction.
//   - Locations are indexed contiguously: depots first, then clients.
//   - MaxValue (math.MaxInt64 / 4) is the sentinel for forbidden edges and
//     for the "infeasible" objective returned by CostEvaluator.Cost.
//   - Everything in this package is deterministic and free of global state.
//
// Construction errors are strict sentinels (see types.go); methods on
// validated values do not fail.
package vrp
