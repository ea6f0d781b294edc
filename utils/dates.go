// utils/dates.go
package utils

import (
	"time"

	"agendapro-backend/models"
)

// MonthRange returns the first and last day of the month containing d.
func MonthRange(d models.Date) (models.Date, models.Date) {
	t := d.Time()
	first := models.NewDate(t.Year(), t.Month(), 1)
	return first, models.DateOf(first.Time().AddDate(0, 1, -1))
}

// DaysBetween counts whole days from start to end.
func DaysBetween(start, end models.Date) int {
	return int(end.Time().Sub(start.Time()).Hours() / 24)
}

// ParseDateParam parses an optional YYYY-MM-DD query value. Empty input
// yields nil.
func ParseDateParam(value string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) models.Date {
	if loc != nil {
		now = now.In(loc)
	}
	return models.DateOf(now)
}
