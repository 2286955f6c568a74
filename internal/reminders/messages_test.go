package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tasktracker/internal/models"
)

func TestLocalClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	require.Equal(t, "18:04", LocalClock(at, "Europe/Moscow"))
	require.Equal(t, "15:04 (UTC)", LocalClock(at, ""))
	require.Equal(t, "15:04 (UTC)", LocalClock(at, "Nowhere/Special"))
}

func TestMessages(t *testing.T) {
	task := models.DueTask{Title: "pay <rent>", Deadline: deadline, Timezone: "UTC"}

	upcoming := UpcomingMessage(deadline.Add(-10*time.Minute), task)
	require.Contains(t, upcoming, "Reminder!")
	require.Contains(t, upcoming, "pay &lt;rent&gt;")
	require.Contains(t, upcoming, "10 min")

	expired := ExpiredMessage(task)
	require.Contains(t, expired, "DEADLINE REACHED!")
	require.Contains(t, expired, "Time: 09:30")

	briefing := BriefingMessage([]string{"a", "b"})
	require.Contains(t, briefing, "You have 2 tasks scheduled for today")
	require.Contains(t, briefing, "• a\n• b")
}

func TestDayBounds(t *testing.T) {
	from, to := dayBounds(time.Date(2026, 5, 6, 7, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 5, 6, 23, 59, 59, 999999000, time.UTC), to)
}

func TestGroupBriefings(t *testing.T) {
	due := []models.DueTask{
		{UserID: 3, TelegramID: 30, Title: "x"},
		{UserID: 1, TelegramID: 10, Title: "y"},
		{UserID: 3, TelegramID: 30, Title: "z"},
	}
	require.Equal(t, []Briefing{
		{UserID: 1, TelegramID: 10, Titles: []string{"y"}},
		{UserID: 3, TelegramID: 30, Titles: []string{"x", "z"}},
	}, groupBriefings(due))
}
