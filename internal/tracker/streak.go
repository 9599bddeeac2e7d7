package tracker

import (
	"context"
	"time"
)

// ComputeStreak counts consecutive completed days ending yesterday, plus one
// when today is also completed. An unfinished today never breaks the streak.
func (s *HabitService) ComputeStreak(ctx context.Context, habitID string) (int, error) {
	completions, err := s.database.ListCompletions(ctx, habitID, 0)
	if err != nil {
		return 0, StorageFailure("compute streak", err)
	}

	days := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		d, err := ParseDate(c.Date)
		if err != nil {
			s.logger.Warn("skipping unparseable completion date", "completion_id", c.ID, "date", c.Date)
			continue
		}
		days[FormatDate(d)] = struct{}{}
	}

	return streakFrom(days, calendarDay(s.clock.Now())), nil
}

// streakFrom walks backward from the day before today while days are present,
// then adds today separately.
func streakFrom(days map[string]struct{}, today time.Time) int {
	streak := 0
	for day := today.AddDate(0, 0, -1); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[FormatDate(day)]; !ok {
			break
		}
		streak++
	}
	if _, ok := days[FormatDate(today)]; ok {
		streak++
	}
	return streak
}
