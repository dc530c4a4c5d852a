package aitime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical absolute date format.
	DateLayout = "2006-01-02"
	// ClockLayout is the canonical 24-hour clock format.
	ClockLayout = "15:04"

	TokenToday    = "today"
	TokenTomorrow = "tomorrow"
)

var (
	// ErrInvalidDate is returned for tokens that are neither relative nor YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidTime is returned for clock strings outside HH:mm or out of range.
	ErrInvalidTime = errors.New("invalid time")
)

// clockPattern accepts H:mm, HH:mm and an optional :ss suffix which is ignored.
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Resolver turns relative tokens into absolute values for one pipeline run.
// The anchors are fixed at construction and never re-read.
type Resolver struct {
	now      time.Time
	loc      *time.Location
	today    time.Time
	tomorrow time.Time
}

// NewResolver anchors "today" and "tomorrow" on now's calendar day in now's location.
func NewResolver(now time.Time) *Resolver {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return &Resolver{
		now:      now,
		loc:      loc,
		today:    today,
		tomorrow: today.AddDate(0, 0, 1),
	}
}

// Now returns the reference instant.
func (r *Resolver) Now() time.Time {
	return r.now
}

// Location returns the caller's calendar location.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Today returns the anchor date for "today".
func (r *Resolver) Today() string {
	return r.today.Format(DateLayout)
}

// Tomorrow returns the anchor date for "tomorrow".
func (r *Resolver) Tomorrow() string {
	return r.tomorrow.Format(DateLayout)
}

// IsRelativeToken reports whether s is "today" or "tomorrow", ignoring case and spaces.
func IsRelativeToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case TokenToday, TokenTomorrow:
		return true
	}
	return false
}

// ResolveDate returns the canonical YYYY-MM-DD for token.
// token is "today", "tomorrow" or an already absolute YYYY-MM-DD date.
func (r *Resolver) ResolveDate(token string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch t {
	case TokenToday:
		return r.Today(), nil
	case TokenTomorrow:
		return r.Tomorrow(), nil
	}

	d, err := time.ParseInLocation(DateLayout, t, r.loc)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, token)
	}
	return d.Format(DateLayout), nil
}

// ParseClock parses a 24-hour HH:mm string.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// FormatClock renders hour and minute as HH:mm.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Compose builds the absolute instant of clock on date in the resolver's location.
// date may be relative; it is resolved first.
func (r *Resolver) Compose(date, clock string) (time.Time, error) {
	resolved, err := r.ResolveDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d, _ := time.ParseInLocation(DateLayout, resolved, r.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, r.loc), nil
}
