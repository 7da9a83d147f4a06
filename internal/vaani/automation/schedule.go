package automation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// compileSchedule turns a task definition into a cron.Schedule. Interval and
// relative once schedules are anchored at now. A schedule whose Next returns
// the zero time never fires again.
func compileSchedule(t Task, now time.Time) (cron.Schedule, error) {
	switch t.Kind {
	case Daily:
		h, m, err := parseClock(t.Value)
		if err != nil {
			return nil, err
		}
		return parseSpec(fmt.Sprintf("%d %d * * *", m, h))

	case Weekly:
		h, m, err := parseClock(t.Value)
		if err != nil {
			return nil, err
		}
		days, err := parseDays(t.Days)
		if err != nil {
			return nil, err
		}
		return parseSpec(fmt.Sprintf("%d %d * * %s", m, h, days))

	case Interval:
		d, err := parseInterval(t.Value)
		if err != nil {
			return nil, err
		}
		return cron.Every(d), nil

	case Once:
		at, err := parseOnce(t.Value, now)
		if err != nil {
			return nil, err
		}
		return onceSchedule{at: at}, nil
	}
	return nil, fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, t.Kind)
}

func parseSpec(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return s, nil
}

// parseClock parses "HH:MM" (24-hour).
func parseClock(v string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time of day %q must be HH:MM", ErrInvalidSchedule, v)
	}
	return t.Hour(), t.Minute(), nil
}

// parseDays renders weekday names as a cron day-of-week list ("0,3").
func parseDays(names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("%w: weekly schedule needs at least one day", ErrInvalidSchedule)
	}
	seen := make(map[time.Weekday]bool, len(names))
	var parts []string
	for _, n := range names {
		d, ok := weekdays[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, n)
		}
		if !seen[d] {
			seen[d] = true
			parts = append(parts, strconv.Itoa(int(d)))
		}
	}
	return strings.Join(parts, ","), nil
}

// parseInterval accepts a whole number of minutes or a Go duration. Values
// under one second are rejected because cron.Every rounds to seconds.
func parseInterval(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	var d time.Duration
	if n, err := strconv.Atoi(v); err == nil {
		d = time.Duration(n) * time.Minute
	} else if d, err = time.ParseDuration(v); err != nil {
		return 0, fmt.Errorf("%w: interval %q must be minutes or a duration", ErrInvalidSchedule, v)
	}
	if d < time.Second {
		return 0, fmt.Errorf("%w: interval %q is too short", ErrInvalidSchedule, v)
	}
	return d, nil
}

// parseOnce resolves "HH:MM" to its next occurrence after now, or parses an
// absolute RFC 3339 instant.
func parseOnce(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if at, err := time.Parse(time.RFC3339, v); err == nil {
		return at, nil
	}
	h, m, err := parseClock(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: once value %q must be HH:MM or RFC 3339", ErrInvalidSchedule, v)
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// onceSchedule fires at a single instant.
type onceSchedule struct{ at time.Time }

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// ValidateTask reports whether t has a usable schedule and command.
func ValidateTask(t Task) error {
	if strings.TrimSpace(t.Command) == "" {
		return fmt.Errorf("%w: %q has no command", ErrInvalidTask, t.Name)
	}
	_, err := compileSchedule(t, time.Now())
	return err
}
