package core

import (
	"time"

	"launchkit-backend-go/internal/models"
)

const (
	seriesDays = 30
	dateLayout = "2006-01-02"
)

// dailySeries buckets timestamps into one count per UTC day, oldest first, ending today.
// Days without events are present with a zero count.
func dailySeries(times []time.Time, now time.Time, days int) []models.DailyCount {
	today := startOfDay(now)
	start := today.AddDate(0, 0, -(days - 1))

	series := make([]models.DailyCount, days)
	index := make(map[string]int, days)
	for i := range series {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		series[i] = models.DailyCount{Date: date}
		index[date] = i
	}
	for _, t := range times {
		if i, ok := index[t.UTC().Format(dateLayout)]; ok {
			series[i].Count++
		}
	}
	return series
}

// seriesStart is the first instant covered by a series of the given length.
func seriesStart(now time.Time, days int) time.Time {
	return startOfDay(now).AddDate(0, 0, -(days - 1))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
