package slots

import "time"

// AvailableBetween returns the resources with at least one recorded instant
// inside [start, end], both ends inclusive, in schedule order.
//
// A resource only has to touch the window once to be returned. Coverage of
// the whole window is not checked: the portal samples the grid every 15
// minutes and a resource free only at start still qualifies.
func (s *Schedule) AvailableBetween(start, end time.Time) []string {
	var available []string
	for _, resource := range s.order {
		for _, at := range s.times[resource] {
			if !at.Before(start) && !at.After(end) {
				available = append(available, resource)
				break
			}
		}
	}
	return available
}
