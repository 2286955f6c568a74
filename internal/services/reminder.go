package services

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"tasktracker/internal/models"
	"tasktracker/internal/shard"
	"time"
)

const selectDueTask = `SELECT t.id, t.user_id, u.telegram_id, u.timezone, t.title, t.deadline
FROM tasks t JOIN users u ON u.id = t.user_id`

// ListDueTasks собирает со всех user-шардов задачи для напоминаний:
// дедлайн в (now, now+window] без предупреждения и просроченные без уведомления.
func (s *TaskService) ListDueTasks(ctx context.Context, now time.Time, window time.Duration) ([]models.DueTask, error) {
	now = now.UTC()
	var due []models.DueTask

	for _, shardID := range shard.ShardIDs(s.ShardManager.UserShards) {
		db := s.ShardManager.UserShards[shardID]

		upcoming, err := queryDueTasks(ctx, db, models.ReminderKindUpcoming,
			selectDueTask+` WHERE t.deadline > $1 AND t.deadline <= $2 AND NOT t.is_completed AND NOT t.is_pre_notified
			ORDER BY t.deadline`, now, now.Add(window))
		if err != nil {
			return nil, fmt.Errorf("user shard %d: %w", shardID, err)
		}
		due = append(due, upcoming...)

		expired, err := queryDueTasks(ctx, db, models.ReminderKindExpired,
			selectDueTask+` WHERE t.deadline <= $1 AND NOT t.is_completed AND NOT t.is_notified
			ORDER BY t.deadline`, now)
		if err != nil {
			return nil, fmt.Errorf("user shard %d: %w", shardID, err)
		}
		due = append(due, expired...)
	}

	return due, nil
}

// ListTasksDueBetween возвращает незавершенные задачи с дедлайном в [from, to]
func (s *TaskService) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.DueTask, error) {
	var due []models.DueTask
	for _, shardID := range shard.ShardIDs(s.ShardManager.UserShards) {
		db := s.ShardManager.UserShards[shardID]
		tasks, err := queryDueTasks(ctx, db, "",
			selectDueTask+` WHERE t.deadline BETWEEN $1 AND $2 AND NOT t.is_completed ORDER BY t.deadline`,
			from.UTC(), to.UTC())
		if err != nil {
			return nil, fmt.Errorf("user shard %d: %w", shardID, err)
		}
		due = append(due, tasks...)
	}
	return due, nil
}

func queryDueTasks(ctx context.Context, db *pgxpool.Pool, kind models.ReminderKind, query string, args ...any) ([]models.DueTask, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DueTask, error) {
		d := models.DueTask{Kind: kind}
		err := row.Scan(&d.TaskID, &d.UserID, &d.TelegramID, &d.Timezone, &d.Title, &d.Deadline)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan due tasks: %w", err)
	}
	return tasks, nil
}

// MarkReminded ставит флаг уведомления соответствующего вида
func (s *TaskService) MarkReminded(ctx context.Context, userID, taskID int64, kind models.ReminderKind) error {
	return s.setReminded(ctx, userID, taskID, kind, true)
}

// ClearReminded снимает флаг, если сообщение так и не ушло
func (s *TaskService) ClearReminded(ctx context.Context, userID, taskID int64, kind models.ReminderKind) error {
	return s.setReminded(ctx, userID, taskID, kind, false)
}

func (s *TaskService) setReminded(ctx context.Context, userID, taskID int64, kind models.ReminderKind, value bool) error {
	var query string
	switch kind {
	case models.ReminderKindUpcoming:
		query = `UPDATE tasks SET is_pre_notified = $3 WHERE id = $1 AND user_id = $2`
	case models.ReminderKindExpired:
		query = `UPDATE tasks SET is_notified = $3 WHERE id = $1 AND user_id = $2`
	default:
		return fmt.Errorf("unknown reminder kind %q", kind)
	}

	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, query, taskID, userID, value); err != nil {
		return fmt.Errorf("failed to update reminder flag of task %d: %w", taskID, err)
	}
	return nil
}
