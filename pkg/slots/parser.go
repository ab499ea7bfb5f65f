package slots

import (
	"fmt"
	"strings"
	"time"
)

// LabelDelimiter separates the fields of a slot label.
const LabelDelimiter = " - "

// TimeLayout is the time text of a slot label, e.g. "9:00AM Monday, January 01, 2024".
const TimeLayout = "3:04PM Monday, January 02, 2006"

// AvailableMarker is the trailing field the portal puts on open slots.
const AvailableMarker = "Available"

// Slot is one resource observed available at one instant.
type Slot struct {
	Resource string
	At       time.Time
}

// ParseError reports a slot label that does not follow the expected grammar.
type ParseError struct {
	Label  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse slot label %q: %s: %v", e.Label, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse slot label %q: %s", e.Label, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLabel turns "<time> - <resource> - Available" into a Slot. Fields after
// the resource name are ignored. The time is read in loc (time.Local if nil).
func ParseLabel(label string, loc *time.Location) (Slot, error) {
	if loc == nil {
		loc = time.Local
	}

	fields := strings.Split(label, LabelDelimiter)
	if len(fields) < 2 {
		return Slot{}, &ParseError{Label: label, Reason: "expected at least two fields"}
	}

	at, err := time.ParseInLocation(TimeLayout, fields[0], loc)
	if err != nil {
		return Slot{}, &ParseError{Label: label, Reason: "bad time text", Err: err}
	}

	return Slot{Resource: fields[1], At: at}, nil
}

// ParseLabels parses every label it can. Malformed labels are skipped and
// reported in the returned error slice, in input order, so a single bad
// label does not sink the whole scrape.
func ParseLabels(labels []string, loc *time.Location) ([]Slot, []error) {
	parsed := make([]Slot, 0, len(labels))
	var errs []error

	for _, label := range labels {
		slot, err := ParseLabel(label, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		parsed = append(parsed, slot)
	}
	return parsed, errs
}

// FormatLabel renders the label prefix the portal uses for resource at t,
// e.g. "9:00AM Monday, January 01, 2024 - PC1 - Available".
func FormatLabel(resource string, t time.Time) string {
	return t.Format(TimeLayout) + LabelDelimiter + resource + LabelDelimiter + AvailableMarker
}
