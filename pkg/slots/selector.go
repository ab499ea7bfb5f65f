package slots

import "errors"

// ErrNoResources is returned when there is nothing to select from.
var ErrNoResources = errors.New("no available resources")

// Select returns preferred if it is in available, otherwise the first entry.
func Select(available []string, preferred string) (string, error) {
	if len(available) == 0 {
		return "", ErrNoResources
	}
	for _, name := range available {
		if name == preferred {
			return name, nil
		}
	}
	return available[0], nil
}
