package slots

import "time"

// Schedule maps each resource to the instants it was seen available.
// Resources keep the order they were first seen in and each resource keeps
// its instants in arrival order. Nothing is sorted or deduplicated.
type Schedule struct {
	order []string
	times map[string][]time.Time
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{times: make(map[string][]time.Time)}
}

// BuildSchedule folds parsed slots into a schedule.
func BuildSchedule(parsed []Slot) *Schedule {
	s := NewSchedule()
	for _, slot := range parsed {
		s.Add(slot.Resource, slot.At)
	}
	return s
}

// Add records one available instant for resource.
func (s *Schedule) Add(resource string, at time.Time) {
	if _, seen := s.times[resource]; !seen {
		s.order = append(s.order, resource)
	}
	s.times[resource] = append(s.times[resource], at)
}

// Resources returns resource names in first-seen order.
func (s *Schedule) Resources() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Times returns the instants recorded for resource.
func (s *Schedule) Times(resource string) []time.Time {
	times := s.times[resource]
	out := make([]time.Time, len(times))
	copy(out, times)
	return out
}

// Len is the number of distinct resources.
func (s *Schedule) Len() int { return len(s.order) }

// Count is the number of instants across all resources.
func (s *Schedule) Count() int {
	n := 0
	for _, times := range s.times {
		n += len(times)
	}
	return n
}
