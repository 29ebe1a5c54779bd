// Package cron parses standard 5-field cron expressions and computes the
// next execution time for a schedule. It backs the settlement scheduler;
// seconds-level resolution and extensions like @daily are not supported.
package cron

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidExpression is returned when a cron expression cannot be parsed
// due to incorrect field count, out-of-range values, or malformed syntax.
var ErrInvalidExpression = errors.New("invalid cron expression")

// ErrNoMatch is returned when Next exhausts its iteration limit without
// finding a time that satisfies all cron fields.
var ErrNoMatch = errors.New("cron: no matching time found within iteration limit")

type fieldSpec struct {
	name string
	min  int
	max  int
}

var fieldSpecs = [5]fieldSpec{
	{name: "minute", min: 0, max: 59},
	{name: "hour", min: 0, max: 23},
	{name: "day-of-month", min: 1, max: 31},
	{name: "month", min: 1, max: 12},
	{name: "day-of-week", min: 0, max: 6},
}

// Schedule is a parsed cron schedule capable of computing the next
// execution time after a given reference time. All times are UTC.
type Schedule struct {
	minutes []int
	hours   []int
	doms    []int
	months  []int
	dows    []int
}

// Parse parses a 5-field cron expression (minute hour day-of-month month
// day-of-week). Lists, ranges, steps, and "*" are supported per field.
func Parse(expr string) (*Schedule, error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != len(fieldSpecs) {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidExpression, len(fieldSpecs), len(fields))
	}

	parsed := make([][]int, len(fieldSpecs))

	for i, spec := range fieldSpecs {
		vals, err := parseField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", spec.name, err)
		}

		parsed[i] = vals
	}

	return &Schedule{
		minutes: parsed[0],
		hours:   parsed[1],
		doms:    parsed[2],
		months:  parsed[3],
		dows:    parsed[4],
	}, nil
}

// Next computes the next execution time strictly after the given reference
// time. The input is normalized to UTC and truncated to minute resolution.
func (sched *Schedule) Next(from time.Time) (time.Time, error) {
	candidate := from.UTC().Add(time.Minute).Truncate(time.Minute)

	const maxIterations = 366 * 24 * 60
	for i := 0; i < maxIterations; i++ {
		switch {
		case !slices.Contains(sched.months, int(candidate.Month())):
			candidate = time.Date(candidate.Year(), candidate.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		case !slices.Contains(sched.doms, candidate.Day()) || !slices.Contains(sched.dows, int(candidate.Weekday())):
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day()+1, 0, 0, 0, 0, time.UTC)
		case !slices.Contains(sched.hours, candidate.Hour()):
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), candidate.Hour()+1, 0, 0, 0, time.UTC)
		case !slices.Contains(sched.minutes, candidate.Minute()):
			candidate = candidate.Add(time.Minute)
		default:
			return candidate, nil
		}
	}

	return time.Time{}, ErrNoMatch
}

func parseField(field string, minVal, maxVal int) ([]int, error) {
	var result []int

	for _, part := range strings.Split(field, ",") {
		vals, err := parsePart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}

		result = append(result, vals...)
	}

	slices.Sort(result)

	return slices.Compact(result), nil
}

func parsePart(part string, minVal, maxVal int) ([]int, error) {
	base, stepRaw, hasStep := strings.Cut(part, "/")

	step := 1

	if hasStep {
		s, err := strconv.Atoi(stepRaw)
		if err != nil || s <= 0 {
			return nil, fmt.Errorf("%w: invalid step %q", ErrInvalidExpression, stepRaw)
		}

		step = s
	}

	lo, hi := minVal, maxVal

	switch {
	case base == "*":
	case strings.Contains(base, "-"):
		loRaw, hiRaw, _ := strings.Cut(base, "-")

		var err error
		if lo, err = strconv.Atoi(loRaw); err != nil {
			return nil, fmt.Errorf("%w: invalid range start %q", ErrInvalidExpression, loRaw)
		}

		if hi, err = strconv.Atoi(hiRaw); err != nil {
			return nil, fmt.Errorf("%w: invalid range end %q", ErrInvalidExpression, hiRaw)
		}

		if lo < minVal || hi > maxVal || lo > hi {
			return nil, fmt.Errorf("%w: range %d-%d out of bounds [%d, %d]", ErrInvalidExpression, lo, hi, minVal, maxVal)
		}
	default:
		val, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value %q", ErrInvalidExpression, base)
		}

		if val < minVal || val > maxVal {
			return nil, fmt.Errorf("%w: value %d out of bounds [%d, %d]", ErrInvalidExpression, val, minVal, maxVal)
		}

		if !hasStep {
			return []int{val}, nil
		}

		lo = val
	}

	vals := make([]int, 0, (hi-lo)/step+1)
	for v := lo; v <= hi; v += step {
		vals = append(vals, v)
	}

	return vals, nil
}
