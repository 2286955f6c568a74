package models

import "time"

type ReminderKind string

const ReminderKindUpcoming ReminderKind = "upcoming"
const ReminderKindExpired ReminderKind = "expired"

// DueTask is a task joined with the owner fields a notification needs.
type DueTask struct {
	TaskID     int64
	UserID     int64
	TelegramID int64
	Timezone   string
	Title      string
	Deadline   time.Time
	Kind       ReminderKind
}
