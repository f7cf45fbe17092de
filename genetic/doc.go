// Package genetic implements the population-based orchestration of the
// solver: hybrid genetic search over routing solutions.
//
// 🧬 Components:
//
//	PenaltyManager   — self-adapting penalty coefficients, one per
//	                   constraint dimension, driven by sliding windows of
//	                   recent offspring feasibility; also hands out the
//	                   boosted evaluator used for repair passes.
//	Population       — two sub-populations (feasible / infeasible) ranked
//	                   by biased fitness: a blend of cost rank and
//	                   broken-pairs diversity rank; overflow triggers
//	                   iterative worst-removal, stagnation triggers a
//	                   restart.
//	Crossover        — selective route exchange (SREX) with greedy
//	                   reinsertion, and an ordered crossover (OX) fallback
//	                   on the giant-tour representation for plain
//	                   single-vehicle-type instances.
//	GeneticAlgorithm — the generation loop: tournament selection,
//	                   crossover, education by local search, optional
//	                   boosted repair, insertion, penalty update, restart,
//	                   and best-feasible tracking against a stop criterion.
//
// Parameters are plain option structs with defaults; tuned presets load
// from YAML. The loop logs a summary per generation at debug level when
// given a logger, and can feed a stats collector; neither is required.
package genetic
