package reminders

import (
	"fmt"
	"github.com/samber/lo"
	"html"
	"slices"
	"strings"
	"tasktracker/internal/models"
	"time"
	_ "time/tzdata"
)

// Briefing is one user's share of the morning briefing.
type Briefing struct {
	UserID     int64
	TelegramID int64
	Titles     []string
}

// LocalClock renders t as HH:MM in the user's timezone, falling back to UTC.
func LocalClock(t time.Time, timezone string) string {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return t.In(loc).Format("15:04")
		}
	}
	return t.UTC().Format("15:04") + " (UTC)"
}

func UpcomingMessage(now time.Time, task models.DueTask) string {
	minutesLeft := int(task.Deadline.Sub(now).Minutes())
	return fmt.Sprintf("⏳ <b>Reminder!</b>\n\nTask: <b>%s</b>\nDue in: <b>%d min</b>",
		html.EscapeString(task.Title), minutesLeft)
}

func ExpiredMessage(task models.DueTask) string {
	return fmt.Sprintf("🔥 <b>DEADLINE REACHED!</b>\n\nTask: <b>%s</b>\nTime: %s",
		html.EscapeString(task.Title), LocalClock(task.Deadline, task.Timezone))
}

func BriefingMessage(titles []string) string {
	lines := lo.Map(titles, func(title string, _ int) string {
		return "• " + html.EscapeString(title)
	})
	return fmt.Sprintf("☀️ <b>Good Morning!</b>\n\nYou have %d tasks scheduled for today:\n\n%s",
		len(titles), strings.Join(lines, "\n"))
}

// dayBounds returns the first and last instant of t's UTC day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Microsecond)
}

// groupBriefings groups due tasks per user, ordered by user id so the
// workflow schedules activities deterministically.
func groupBriefings(due []models.DueTask) []Briefing {
	byUser := lo.GroupBy(due, func(t models.DueTask) int64 { return t.UserID })
	userIDs := lo.Keys(byUser)
	slices.Sort(userIDs)

	return lo.Map(userIDs, func(userID int64, _ int) Briefing {
		tasks := byUser[userID]
		return Briefing{
			UserID:     userID,
			TelegramID: tasks[0].TelegramID,
			Titles:     lo.Map(tasks, func(t models.DueTask, _ int) string { return t.Title }),
		}
	})
}
