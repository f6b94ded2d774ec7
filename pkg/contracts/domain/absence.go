package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// SchoolHourMinutes is the length of one school-hour in minutes
	SchoolHourMinutes = 67

	// SchoolHoursPerDay is the number of school-hours attributed to a full absence day
	SchoolHoursPerDay = 4
)

// RawEntry is one line of the attendance export as read from the input table
type RawEntry struct {
	Row          int    `json:"row"`
	AbsenceField string `json:"absence_field"`
	PersonName   string `json:"person_name" validate:"required"`
	StatusText   string `json:"status_text"`
	UpdatedAt    string `json:"updated_at"`
}

// NormalizedEntry is a single absence converted to a duration in school-hours
type NormalizedEntry struct {
	Row        int          `json:"row"`
	Duration   float64      `json:"duration" validate:"min=0"`
	Kind       DurationKind `json:"kind"`
	PersonName string       `json:"person_name" validate:"required"`
	Status     Status       `json:"status"`
	UpdatedAt  string       `json:"updated_at,omitempty"`
}

// PersonSummary holds the aggregated absence totals of one person
type PersonSummary struct {
	PersonName     string `json:"name"`
	ExcusedTotal   int64  `json:"excused"`
	UnexcusedTotal int64  `json:"unexcused"`
	GrandTotal     int64  `json:"total"`
	Unit           Unit   `json:"unit"`
}

// Status is the excused/unexcused classification of an absence
type Status int

const (
	StatusUnexcused Status = iota
	StatusExcused
)

// excusedLabels are the folded status texts that count as excused
var excusedLabels = map[string]struct{}{
	"entschuldigt": {},
	"excused":      {},
}

// ParseStatus maps the free-form status column to a Status.
// Matching is case-insensitive under Unicode case folding.
func ParseStatus(text string) Status {
	folded := cases.Fold().String(norm.NFC.String(strings.TrimSpace(text)))
	if _, ok := excusedLabels[folded]; ok {
		return StatusExcused
	}
	return StatusUnexcused
}

// String returns the export label of the status
func (s Status) String() string {
	if s == StatusExcused {
		return "entschuldigt"
	}
	return "unentschuldigt"
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

// DurationKind identifies which encoding the absence field used
type DurationKind string

const (
	KindClockRange DurationKind = "clock_range"
	KindDateRange  DurationKind = "date_range"
	KindFullDay    DurationKind = "full_day"
)

// Unit is the output unit of durations and totals
type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

// ParseUnit validates a unit name
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitHours:
		return UnitHours, nil
	case UnitMinutes:
		return UnitMinutes, nil
	default:
		return "", fmt.Errorf("unknown unit %q (want hours or minutes)", s)
	}
}

// FromSchoolHours converts a duration in school-hours to the unit
func (u Unit) FromSchoolHours(hours float64) float64 {
	if u == UnitMinutes {
		return hours * SchoolHourMinutes
	}
	return hours
}

// Label returns the German column label for the unit
func (u Unit) Label() string {
	if u == UnitMinutes {
		return "Minuten"
	}
	return "Schulstunden"
}
