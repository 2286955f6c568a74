package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"strings"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/models"
	"tasktracker/internal/shard"
	"time"
)

const maxTaskTitle = 255

// NewTaskService принимает источник ID; nil означает id.Fallback()
func NewTaskService(manager *shard.ShardManager, ids id.Source, categories *CategoryService) *TaskService {
	return &TaskService{
		ShardManager: manager,
		ids:          id.OrFallback(ids),
		categories:   categories,
	}
}

type TaskService struct {
	ShardManager *shard.ShardManager
	ids          id.Source
	categories   *CategoryService
}

const selectTask = `SELECT t.id, t.user_id, t.title, t.description, t.deadline, t.is_completed, t.is_notified,
       t.is_pre_notified, t.category_id, COALESCE(c.name, ''), t.created_at, t.updated_at
FROM tasks t LEFT JOIN categories c ON c.id = t.category_id`

func scanTask(row pgx.Row) (models.Task, error) {
	t := models.Task{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Deadline, &t.IsCompleted, &t.IsNotified,
		&t.IsPreNotified, &t.CategoryID, &t.CategoryName, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > maxTaskTitle {
		return "", fmt.Errorf("title must be 1..%d characters: %w", maxTaskTitle, apperrors.ErrInvalidInput)
	}
	return title, nil
}

// CreateTask выделяет ID и сохраняет задачу. Ошибка генератора ID (например,
// часы ушли назад) прерывает запись и возвращается как есть.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, in models.NewTask) (*models.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Deadline:    normalizeDeadline(in.Deadline),
	}

	switch {
	case in.CategoryName != "":
		category, err := s.categories.GetOrCreateCategory(ctx, userID, in.CategoryName)
		if err != nil {
			return nil, err
		}
		task.CategoryID = &category.ID
		task.CategoryName = category.Name
	case in.CategoryID != nil:
		category, err := getCategory(ctx, db, userID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		task.CategoryID = &category.ID
		task.CategoryName = category.Name
	}

	task.ID, err = s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate task id: %w", err)
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err = db.Exec(ctx, `INSERT INTO tasks (id, user_id, category_id, title, description, deadline, created_at, updated_at)
						   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.UserID, task.CategoryID, task.Title, task.Description, task.Deadline, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		if pgErr, ok := lo.ErrorsAs[*pgconn.PgError](err); ok && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	logger.L().Infow("task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

func normalizeDeadline(deadline *time.Time) *time.Time {
	if deadline == nil {
		return nil
	}
	d := deadline.UTC()
	return &d
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	task, err := scanTask(db.QueryRow(ctx, selectTask+` WHERE t.id = $1 AND t.user_id = $2`, taskID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", taskID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// ListTasks возвращает задачи пользователя, новые первыми
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, selectTask+` WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask применяет частичное обновление. Смена дедлайна сбрасывает флаги уведомлений.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, update models.TaskUpdate) (*models.Task, error) {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	err = shard.WithTransaction(ctx, db, func(tx pgx.Tx) error {
		task, err := scanTask(tx.QueryRow(ctx, selectTask+` WHERE t.id = $1 AND t.user_id = $2 FOR UPDATE OF t`, taskID, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("task %d: %w", taskID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to select task: %w", err)
		}

		if update.Title != nil {
			if task.Title, err = validateTitle(*update.Title); err != nil {
				return err
			}
		}
		if update.Description != nil {
			task.Description = *update.Description
		}
		if update.IsCompleted != nil {
			task.IsCompleted = *update.IsCompleted
		}
		if update.CategoryID != nil {
			if _, err := getCategory(ctx, tx, userID, *update.CategoryID); err != nil {
				return err
			}
			task.CategoryID = update.CategoryID
		}
		if update.Deadline != nil {
			deadline := normalizeDeadline(update.Deadline)
			if task.Deadline == nil || !task.Deadline.Equal(*deadline) {
				task.IsNotified = false
				task.IsPreNotified = false
			}
			task.Deadline = deadline
		}

		const query = `UPDATE tasks SET title = $3, description = $4, deadline = $5, is_completed = $6, category_id = $7,
					   is_notified = $8, is_pre_notified = $9, updated_at = $10 WHERE id = $1 AND user_id = $2`
		rows, err := tx.Exec(ctx, query, taskID, userID, task.Title, task.Description, task.Deadline, task.IsCompleted,
			task.CategoryID, task.IsNotified, task.IsPreNotified, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if rows.RowsAffected() != 1 {
			return fmt.Errorf("failed to update task: expected 1 row affected, got %d", rows.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, userID, taskID)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return err
	}

	rows, err := db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("task %d: %w", taskID, apperrors.ErrNotFound)
	}
	return nil
}
