package utils

import "time"

// Отчётные периоды считаются в UTC: границы суток не зависят от
// таймзоны сервера.

// DayStartUTC возвращает начало суток UTC, содержащих t
func DayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEndUTC возвращает последний момент суток UTC, содержащих t
func DayEndUTC(t time.Time) time.Time {
	return DayStartUTC(t).Add(24*time.Hour - time.Nanosecond)
}

// SameDayUTC возвращает true, если a и b в одних сутках UTC
func SameDayUTC(a, b time.Time) bool {
	return DayStartUTC(a).Equal(DayStartUTC(b))
}

// TimeRange - полуоткрытый интервал [From, To) для отчётных выборок
type TimeRange struct {
	From time.Time
	To   time.Time
}

// DayRangeUTC возвращает интервал суток UTC, содержащих t
func DayRangeUTC(t time.Time) TimeRange {
	start := DayStartUTC(t)
	return TimeRange{From: start, To: start.Add(24 * time.Hour)}
}

// Contains проверяет попадание момента в интервал
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}
