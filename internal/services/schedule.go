package services

import (
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// maxScheduleIterations bounds date resolution against malformed contract
// windows (e.g. end date decades out with a daily frequency).
const maxScheduleIterations = 1000

// ResolveDeliveryDates expands a contract's frequency policy into concrete
// delivery dates from the planning date (inclusive) to the contract end date
// (inclusive). Dates before the contract start are never produced.
//
// When the contract names no delivery days, the defaults are: daily covers
// every day, weekly covers Monday, Wednesday and Friday, and every other
// frequency falls back to the planning date's weekday.
func ResolveDeliveryDates(c *domain.Contract, planDate time.Time) []time.Time {
	start := truncateToDay(planDate)
	if s := truncateToDay(c.StartDate); start.Before(s) {
		start = s
	}
	end := truncateToDay(c.EndDate)
	if end.Before(start) {
		return nil
	}

	allowed := allowedWeekdays(c, planDate)

	var dates []time.Time
	switch c.Frequency {
	case domain.FrequencyBiweekly:
		first, ok := firstAllowed(start, end, allowed)
		if !ok {
			return nil
		}
		for d, i := first, 0; !d.After(end) && i < maxScheduleIterations; d, i = d.AddDate(0, 0, 14), i+1 {
			dates = append(dates, d)
		}

	case domain.FrequencyMonthly:
		// One delivery per calendar month, on the first allowed day.
		cursor := start
		for i := 0; !cursor.After(end) && i < maxScheduleIterations; i++ {
			monthEnd := time.Date(cursor.Year(), cursor.Month()+1, 0, 0, 0, 0, 0, cursor.Location())
			if monthEnd.After(end) {
				monthEnd = end
			}
			if d, ok := firstAllowed(cursor, monthEnd, allowed); ok {
				dates = append(dates, d)
			}
			cursor = time.Date(cursor.Year(), cursor.Month()+1, 1, 0, 0, 0, 0, cursor.Location())
		}

	default: // daily, weekly, custom: walk day by day and filter.
		for d, i := start, 0; !d.After(end) && i < maxScheduleIterations; d, i = d.AddDate(0, 0, 1), i+1 {
			if allowed[d.Weekday()] {
				dates = append(dates, d)
			}
		}
	}

	return dates
}

func allowedWeekdays(c *domain.Contract, planDate time.Time) map[time.Weekday]bool {
	allowed := make(map[time.Weekday]bool, 7)
	if len(c.DeliveryDays) > 0 {
		for _, d := range c.DeliveryDays {
			allowed[d] = true
		}
		return allowed
	}

	switch c.Frequency {
	case domain.FrequencyDaily:
		for d := time.Sunday; d <= time.Saturday; d++ {
			allowed[d] = true
		}
	case domain.FrequencyWeekly:
		allowed[time.Monday] = true
		allowed[time.Wednesday] = true
		allowed[time.Friday] = true
	default:
		allowed[planDate.Weekday()] = true
	}
	return allowed
}

func firstAllowed(start, end time.Time, allowed map[time.Weekday]bool) (time.Time, bool) {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if allowed[d.Weekday()] {
			return d, true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
