package timeline

import "github.com/meltforce/shotcaller/internal/models"

// Summarize computes aggregate totals over a timeline.
func Summarize(events []models.TimelineEvent) models.TimelineStats {
	var s models.TimelineStats
	s.TotalEvents = len(events)
	for _, ev := range events {
		switch ev.Type {
		case models.EventShot:
			s.TotalShots++
		case models.EventMessage:
			s.TotalMessages++
		}
		if ev.EndTime > s.TotalDuration {
			s.TotalDuration = ev.EndTime
		}
		if ev.SupersetNumber > s.Supersets {
			s.Supersets = ev.SupersetNumber
		}
	}
	return s
}
