package balance

import (
	"iter"
	"sort"
)

// SegmentKind tells firing phases apart from time lost catching a timer.
type SegmentKind int

const (
	// Firing is a phase where the active weapon shoots enemies.
	Firing SegmentKind = iota
	// Catching is a dead interval spent chasing an upgrade timer.
	Catching
)

// Segment is one contiguous slice of a wave timeline covering [Start, End).
//
// For a firing segment Tier is the active weapon tier and Event is the index of
// the upgrade that ends the phase, or -1 for the final phase. For a catching
// segment Tier is the tier granted once the timer is caught.
type Segment struct {
	Kind  SegmentKind
	Start float64
	End   float64
	Tier  int
	Event int
}

// Length returns the duration of the segment in seconds.
func (s Segment) Length() float64 {
	return s.End - s.Start
}

// UpgradeEvent is an upgrade timer reduced to what the timeline needs.
type UpgradeEvent struct {
	CatchTime     float64
	Tier          int
	CatchDuration float64
}

// Timeline partitions a wave's duration by active weapon tier.
type Timeline struct {
	Duration  float64
	StartTier int
	Events    []UpgradeEvent
}

// NewTimeline builds the timeline of a wave played from startTier. Upgrade
// events are ordered by catch time, keeping declaration order on ties.
func NewTimeline(wave Wave, startTier int) Timeline {
	events := UpgradeEvents(wave.Timers)
	return Timeline{
		Duration:  wave.Duration,
		StartTier: startTier,
		Events:    events,
	}
}

// UpgradeEvents converts timers into events sorted by catch time.
func UpgradeEvents(timers []UpgradeTimer) []UpgradeEvent {
	events := make([]UpgradeEvent, 0, len(timers))
	for _, t := range timers {
		events = append(events, UpgradeEvent{
			CatchTime:     t.CatchTime(),
			Tier:          t.WeaponTier,
			CatchDuration: t.CatchDuration(),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CatchTime < events[j].CatchTime
	})
	return events
}

// Segments returns the firing phases and catching intervals of the timeline in
// time order. The sequence can be ranged over any number of times.
func (t Timeline) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		t.walk(yield)
	}
}

// EndingTier returns the tier active when the wave ends.
func (t Timeline) EndingTier() int {
	return t.walk(func(Segment) bool { return true })
}

// walk emits segments until the wave ends or yield asks to stop, and returns
// the tier active at the point it stopped.
func (t Timeline) walk(yield func(Segment) bool) int {
	cursor := 0.0
	tier := t.StartTier
	next := 0
	for cursor < t.Duration {
		if next < len(t.Events) && t.Events[next].CatchTime <= t.Duration {
			ev := t.Events[next]
			spawn := ev.CatchTime - ev.CatchDuration
			if spawn >= cursor {
				if !yield(Segment{Kind: Firing, Start: cursor, End: spawn, Tier: tier, Event: next}) {
					return tier
				}
				cursor = spawn
			}
			// Overlapping timers never move the cursor backwards.
			end := ev.CatchTime
			if end < cursor {
				end = cursor
			}
			if end > cursor {
				if !yield(Segment{Kind: Catching, Start: cursor, End: end, Tier: ev.Tier, Event: next}) {
					return tier
				}
			}
			cursor = end
			tier = ev.Tier
			next++
			continue
		}
		if !yield(Segment{Kind: Firing, Start: cursor, End: t.Duration, Tier: tier, Event: -1}) {
			return tier
		}
		cursor = t.Duration
	}
	return tier
}
