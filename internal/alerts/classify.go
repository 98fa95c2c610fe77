// Package alerts derives the due-date alert feed from pending installments,
// projected payroll dates and free-form reminders.
package alerts

import (
	"cmp"
	"slices"
	"time"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
)

// Installment alert window, in days relative to the business date.
const (
	LookbackDays  = 60
	LookaheadDays = 14
)

// Thresholds, in days relative to the business date.
const (
	overdueDangerDays = -3
	upcomingWarnDays  = 3
)

// ClassifyInstallment returns the severity of a pending installment due on
// due, or false if it should not be surfaced. Three or more days overdue is
// danger; due today up to three days ahead is warning. One or two days
// overdue is not surfaced.
func ClassifyInstallment(due, today calendar.Date) (models.Severity, bool) {
	diff := calendar.DayDifference(due, today)
	switch {
	case diff <= overdueDangerDays:
		return models.SeverityDanger, true
	case diff >= 0 && diff <= upcomingWarnDays:
		return models.SeverityWarning, true
	default:
		return "", false
	}
}

// ProjectPayDate returns the next monthly pay date for someone who started
// on start: start's day-of-month clamped into today's month, or into the
// following month if that date has already passed.
func ProjectPayDate(start, today calendar.Date) calendar.Date {
	thisMonth := clampDay(today.Year(), today.Month(), start.Day())
	if !thisMonth.Before(today) {
		return thisMonth
	}
	next := calendar.AddMonthsClamped(calendar.New(today.Year(), today.Month(), 1), 1)
	return clampDay(next.Year(), next.Month(), start.Day())
}

func clampDay(year int, month time.Month, day int) calendar.Date {
	return calendar.New(year, month, min(day, calendar.DaysIn(year, month)))
}

// ClassifyPayDate returns the severity of a projected pay date: danger on the
// day itself, warning one to three days ahead.
func ClassifyPayDate(pay, today calendar.Date) (models.Severity, bool) {
	diff := calendar.DayDifference(pay, today)
	switch {
	case diff == 0:
		return models.SeverityDanger, true
	case diff >= 1 && diff <= upcomingWarnDays:
		return models.SeverityWarning, true
	default:
		return "", false
	}
}

// Sort orders alerts by severity (danger, warning, info) and then by due
// date, undated alerts last within a tier. The sort is stable.
func Sort(alerts []models.Alert) {
	slices.SortStableFunc(alerts, func(a, b models.Alert) int {
		if c := cmp.Compare(a.Severity.Rank(), b.Severity.Rank()); c != 0 {
			return c
		}
		switch {
		case a.DueDate.IsZero() && b.DueDate.IsZero():
			return 0
		case a.DueDate.IsZero():
			return 1
		case b.DueDate.IsZero():
			return -1
		}
		return calendar.DayDifference(a.DueDate, b.DueDate)
	})
}
