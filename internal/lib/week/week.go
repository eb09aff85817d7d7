// Package week содержит календарную арифметику для недельного лимита
// посещений. Неделя начинается в понедельник, границы считаются по
// локальным календарным суткам.
package week

import "time"

// Start возвращает понедельник 00:00 недели, в которую попадает t,
// в той же временной зоне.
func Start(t time.Time) time.Time {
	// time.Weekday нумерует с воскресенья, понедельник должен давать смещение 0
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// DaysUntil возвращает число календарных дней от from до to.
// Время суток игнорируется: сравниваются только даты.
func DaysUntil(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
