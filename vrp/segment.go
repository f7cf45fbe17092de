// SPDX-License-Identifier: MIT

// Package vrp - associative segment summaries.
//
// A DurationSegment condenses a contiguous visit sequence into five numbers
// from which travel time, waiting, time warp and the feasible start-time
// window of the whole sequence can be read off. Two summaries merge over a
// connecting edge in O(1), and the merge is associative, so a route keeps
// cumulative prefix/suffix summaries and evaluates any splice with a
// constant number of merges.
//
// The merge is the standard time-warp propagation (Vidal et al.); the
// solver depends on reproducing it exactly, bit for bit:
//
//	atOther = duration₁ − timeWarp₁ + edge        // travel offset to S₂
//	wait    = max(twEarly₂ − atOther − twLate₁, 0)
//	warp    = max(twEarly₁ + atOther − twLate₂, 0)
//
//	duration = duration₁ + duration₂ + edge + wait
//	timeWarp = timeWarp₁ + timeWarp₂ + warp
//	twEarly  = max(twEarly₂ − atOther, twEarly₁) − wait
//	twLate   = min(twLate₂ − atOther, twLate₁) + warp
//	release  = max(release₁, release₂)
//
// A LoadSegment is the load-dimension analogue: deliveries, pickups and the
// maximum load carried, with load = max(load₁ + delivery₂, load₂ + pickup₁)
// on concatenation.
package vrp

// DurationSegment summarises duration and time-window data of a contiguous
// visit sequence. TWEarly/TWLate bound the start-of-service time at the
// segment's first visit; Duration assumes the earliest feasible start.
type DurationSegment struct {
	Duration int64 // travel + service + unavoidable wait
	TimeWarp int64 // accumulated lateness after optimal shifting
	TWEarly  int64 // earliest feasible start of the segment
	TWLate   int64 // latest start without (additional) time warp
	Release  int64 // earliest departure allowed by release times
}

// NewDurationSegment returns the summary of a single visit with the given
// service duration, service time window and release time.
func NewDurationSegment(service, twEarly, twLate, release int64) DurationSegment {
	return DurationSegment{
		Duration: service,
		TWEarly:  twEarly,
		TWLate:   twLate,
		Release:  release,
	}
}

// Merge concatenates s and other over a connecting edge of the given
// duration. Associative; O(1). Additions saturate at MaxValue so forbidden
// edges (duration == MaxValue) stay sentinels instead of wrapping.
func (s DurationSegment) Merge(edge int64, other DurationSegment) DurationSegment {
	atOther := addCap(s.Duration-s.TimeWarp, edge)

	var wait, warp int64
	if d := other.TWEarly - atOther - s.TWLate; d > 0 {
		wait = d
	}
	if d := addCap(s.TWEarly, atOther) - other.TWLate; d > 0 {
		warp = d
	}

	return DurationSegment{
		Duration: addCap(addCap(s.Duration, other.Duration), addCap(edge, wait)),
		TimeWarp: addCap(addCap(s.TimeWarp, other.TimeWarp), warp),
		TWEarly:  maxInt64(other.TWEarly-atOther, s.TWEarly) - wait,
		TWLate:   minInt64(other.TWLate-atOther, s.TWLate) + warp,
		Release:  maxInt64(s.Release, other.Release),
	}
}

// RouteTimeWarp returns the time warp of a whole route summarised by s:
// the accumulated warp plus any extra warp caused by the release time
// pushing the departure past the latest feasible start.
func (s DurationSegment) RouteTimeWarp() int64 {
	extra := int64(0)
	if s.Release > s.TWLate {
		extra = s.Release - s.TWLate
	}
	return addCap(s.TimeWarp, extra)
}

// LoadSegment summarises one load dimension of a contiguous visit
// sequence under mixed delivery/pickup semantics.
type LoadSegment struct {
	Delivery int64 // total demand delivered within the segment
	Pickup   int64 // total demand picked up within the segment
	Load     int64 // maximum load carried while traversing the segment
}

// NewLoadSegment returns the summary of a single visit.
func NewLoadSegment(delivery, pickup int64) LoadSegment {
	return LoadSegment{
		Delivery: delivery,
		Pickup:   pickup,
		Load:     maxInt64(delivery, pickup),
	}
}

// Merge concatenates s and other. Associative; O(1).
func (s LoadSegment) Merge(other LoadSegment) LoadSegment {
	return LoadSegment{
		Delivery: s.Delivery + other.Delivery,
		Pickup:   s.Pickup + other.Pickup,
		Load:     maxInt64(s.Load+other.Delivery, other.Load+s.Pickup),
	}
}

// Excess returns the amount by which the segment's maximum carried load
// exceeds the given capacity.
func (s LoadSegment) Excess(capacity int64) int64 {
	if s.Load > capacity {
		return s.Load - capacity
	}
	return 0
}
