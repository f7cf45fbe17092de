// Package search implements the local search engine of the solver: a
// best-found-first neighbourhood descent over a granular neighbour list.
//
// 🔧 Building blocks:
//
//	Route        — mutable visit sequence with prefix/suffix caches of
//	               cumulative distance, duration segments and trip-aware
//	               load segments. A candidate route assembled from a
//	               cached prefix, a handful of explicit visits and a cached
//	               suffix of the same vehicle type is evaluated with a
//	               constant number of segment merges; across vehicle types
//	               it is evaluated in full.
//	Neighbours   — for every client, the k nearest other clients under a
//	               weighted distance/duration/time-window proximity.
//	LocalSearch  — the engine: shuffles clients, scans each against its
//	               neighbours with the node operator set, applies the first
//	               improving move, and repeats to a fixed point; a second
//	               stage exchanges whole route segments (swap-tails,
//	               relocate-star, swap-star) between overlapping routes.
//
// Operator kinds form a closed set evaluated by exhaustive switch; there is
// no open dispatch in the hot loop. Reload-depot insertion and removal are
// part of the node scan whenever the vehicle type permits reloads.
//
// The engine is deterministic given its RNG and never applies an
// equal-cost move.
package search
