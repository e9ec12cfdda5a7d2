// Package availability computes booking windows and detects overlaps
// between a candidate slot and the reservations already on a date.
package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var (
	ErrInvalidClock   = errors.New("invalid time, expected HH:MM")
	ErrPastMidnight   = errors.New("reservation ends after midnight")
	ErrEmptyDurations = errors.New("at least one service is required")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts "HH:MM" and "HH:MM:SS". Seconds are dropped.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start Clock `json:"heure_debut"`
	End   Clock `json:"heure_fin"`
}

// Overlaps reports whether a and b share any minute. Touching ranges do not overlap.
func Overlaps(a, b TimeRange) bool {
	return a.Start < b.End && b.Start < a.End
}

// HasOverlap returns every existing range that overlaps candidate.
func HasOverlap(candidate TimeRange, existing []TimeRange) (bool, []TimeRange) {
	var conflicts []TimeRange
	for _, r := range existing {
		if Overlaps(candidate, r) {
			conflicts = append(conflicts, r)
		}
	}
	return len(conflicts) > 0, conflicts
}

func SumDurations(durations []int) int {
	total := 0
	for _, d := range durations {
		total += d
	}
	return total
}

// EndOf adds totalMinutes to start. A slot cannot run past midnight.
func EndOf(start Clock, totalMinutes int) (Clock, error) {
	end := int(start) + totalMinutes
	if end >= minutesPerDay {
		return 0, ErrPastMidnight
	}
	return Clock(end), nil
}

// Hours is the opening window. A zero value disables the check.
type Hours struct {
	Open  Clock
	Close Clock
}

func ParseHours(open, close string) (Hours, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Hours{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Hours{}, err
	}
	if c <= o {
		return Hours{}, fmt.Errorf("closing time %s must be after opening time %s", c, o)
	}
	return Hours{Open: o, Close: c}, nil
}

func (h Hours) enabled() bool { return h.Close > h.Open }

// Contains reports whether r lies entirely within the opening window.
func (h Hours) Contains(r TimeRange) bool {
	if !h.enabled() {
		return true
	}
	return r.Start >= h.Open && r.End <= h.Close
}

type Result struct {
	Available     bool        `json:"available"`
	HeureFin      string      `json:"heure_fin"`
	TotalDuration int         `json:"total_duration"`
	Conflicts     []TimeRange `json:"conflicts,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// Check computes the end of a slot built from durations and tests it
// against the opening hours and the existing bookings of the day.
func Check(start Clock, durations []int, existing []TimeRange, hours Hours) (Result, error) {
	if len(durations) == 0 {
		return Result{}, ErrEmptyDurations
	}
	for _, d := range durations {
		if d <= 0 {
			return Result{}, fmt.Errorf("invalid service duration %d", d)
		}
	}

	total := SumDurations(durations)
	end, err := EndOf(start, total)
	if err != nil {
		return Result{}, err
	}

	res := Result{HeureFin: end.String(), TotalDuration: total}
	candidate := TimeRange{Start: start, End: end}

	if !hours.Contains(candidate) {
		res.Reason = fmt.Sprintf("outside opening hours %s-%s", hours.Open, hours.Close)
		return res, nil
	}

	overlap, conflicts := HasOverlap(candidate, existing)
	if overlap {
		res.Conflicts = conflicts
		res.Reason = "time slot overlaps an existing reservation"
		return res, nil
	}

	res.Available = true
	return res, nil
}
