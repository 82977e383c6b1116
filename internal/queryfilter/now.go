package queryfilter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NowPlaceholder evaluated at compile time: $NOW, $NOW+30d, $NOW-5M
const NowPlaceholder = "$NOW"

// TimestampLayout serialization of evaluated placeholders
const TimestampLayout = time.RFC3339

// maxPlaceholderYears giới hạn offset; RFC3339 chỉ biểu diễn năm 0000-9999
const maxPlaceholderYears = 10000

// evalNow resolves a $NOW placeholder relative to now. Units: y m d H M S.
func evalNow(value string, now time.Time) (time.Time, error) {
	remainder := strings.TrimPrefix(value, NowPlaceholder)
	if remainder == "" {
		return now, nil
	}
	if len(remainder) < 3 {
		return time.Time{}, placeholderError("invalid remainder in $NOW placeholder", value)
	}

	op := remainder[0]
	amount, err := strconv.Atoi(remainder[1 : len(remainder)-1])
	if err != nil {
		return time.Time{}, placeholderError("invalid amount in $NOW placeholder", value)
	}
	switch op {
	case '+':
	case '-':
		amount = -amount
	default:
		return time.Time{}, placeholderError("invalid operator in $NOW placeholder", value)
	}

	t, err := shiftNow(now, amount, remainder[len(remainder)-1], value)
	if err != nil {
		return time.Time{}, err
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return time.Time{}, placeholderError("$NOW placeholder out of range", value)
	}
	return t, nil
}

func shiftNow(now time.Time, amount int, unit byte, value string) (time.Time, error) {
	outOfRange := placeholderError("$NOW placeholder out of range", value)
	switch unit {
	case 'y':
		if exceeds(amount, maxPlaceholderYears) {
			return time.Time{}, outOfRange
		}
		return addMonths(now, 12*amount), nil
	case 'm':
		if exceeds(amount, 12*maxPlaceholderYears) {
			return time.Time{}, outOfRange
		}
		return addMonths(now, amount), nil
	case 'd':
		if exceeds(amount, 366*maxPlaceholderYears) {
			return time.Time{}, outOfRange
		}
		return now.AddDate(0, 0, amount), nil
	case 'H':
		return addDuration(now, amount, time.Hour, outOfRange)
	case 'M':
		return addDuration(now, amount, time.Minute, outOfRange)
	case 'S':
		return addDuration(now, amount, time.Second, outOfRange)
	}
	return time.Time{}, placeholderError("invalid time unit in $NOW placeholder", value)
}

// addDuration từ chối amount làm tràn time.Duration
func addDuration(now time.Time, amount int, unit time.Duration, outOfRange error) (time.Time, error) {
	if exceeds(amount, math.MaxInt64/int64(unit)) {
		return time.Time{}, outOfRange
	}
	return now.Add(time.Duration(amount) * unit), nil
}

func exceeds(amount int, limit int64) bool {
	return int64(amount) > limit || int64(amount) < -limit
}

// addMonths clamps the day to the end of the target month (Jan 31 + 1m = Feb 28/29).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
