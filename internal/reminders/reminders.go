package reminders

import (
	"context"
	"errors"
	"fmt"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"tasktracker/internal/logger"
	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"time"
)

const TaskQueue = "reminders-task-queue"

const (
	DeadlineCheckWorkflowID   = "deadline-check"
	MorningBriefingWorkflowID = "morning-briefing"
)

type taskStore interface {
	ListDueTasks(ctx context.Context, now time.Time, window time.Duration) ([]models.DueTask, error)
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.DueTask, error)
	MarkReminded(ctx context.Context, userID, taskID int64, kind models.ReminderKind) error
	ClearReminded(ctx context.Context, userID, taskID int64, kind models.ReminderKind) error
}

type notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Reminders struct {
	tasks    taskStore
	notifier notifier
}

func New(tasks taskStore, notifier notifier) *Reminders {
	return &Reminders{tasks: tasks, notifier: notifier}
}

func (r *Reminders) Register(reg worker.Registry) {
	reg.RegisterWorkflow(r.DeadlineCheckWorkflow)
	reg.RegisterWorkflow(r.MorningBriefingWorkflow)

	reg.RegisterActivity(r.ListDueTasks)
	reg.RegisterActivity(r.ListTasksDueBetween)
	reg.RegisterActivity(r.NotifyTask)
	reg.RegisterActivity(r.SendBriefing)
}

type ScheduleOptions struct {
	DeadlineCheckCron string
	BriefingCron      string
	PreNotifyWindow   time.Duration
}

// Schedule starts both cron workflows. A schedule that is already running is left as is.
func (r *Reminders) Schedule(ctx context.Context, temporalClient client.Client, opts ScheduleOptions) error {
	runs := []struct {
		options client.StartWorkflowOptions
		fn      any
		args    []any
	}{
		{
			options: client.StartWorkflowOptions{
				ID:           DeadlineCheckWorkflowID,
				TaskQueue:    TaskQueue,
				CronSchedule: opts.DeadlineCheckCron,
			},
			fn:   r.DeadlineCheckWorkflow,
			args: []any{opts.PreNotifyWindow},
		},
		{
			options: client.StartWorkflowOptions{
				ID:           MorningBriefingWorkflowID,
				TaskQueue:    TaskQueue,
				CronSchedule: opts.BriefingCron,
			},
			fn: r.MorningBriefingWorkflow,
		},
	}

	for _, run := range runs {
		run.options.WorkflowExecutionErrorWhenAlreadyStarted = true
		_, err := temporalClient.ExecuteWorkflow(ctx, run.options, run.fn, run.args...)
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		switch {
		case errors.As(err, &alreadyStarted):
			logger.L().Infow("cron workflow already scheduled", "workflow_id", run.options.ID)
		case err != nil:
			return fmt.Errorf("failed to schedule %s: %w", run.options.ID, err)
		default:
			logger.L().Infow("cron workflow scheduled", "workflow_id", run.options.ID, "cron", run.options.CronSchedule)
		}
	}
	return nil
}

// DeadlineCheckWorkflow sends the pre-deadline warning and the deadline
// notice for every due task and returns how many messages went out.
func (r *Reminders) DeadlineCheckWorkflow(ctx workflow.Context, window time.Duration) (int, error) {
	ctx = workflow.WithActivityOptions(ctx, defaultActivityOptions())
	logger := workflow.GetLogger(ctx)
	now := workflow.Now(ctx).UTC()

	var due []models.DueTask
	if err := workflow.ExecuteActivity(ctx, r.ListDueTasks, now, window).Get(ctx, &due); err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range due {
		if task.TelegramID == 0 {
			continue
		}
		if err := workflow.ExecuteActivity(ctx, r.NotifyTask, now, task).Get(ctx, nil); err != nil {
			logger.Error("NotifyTask fails", "task_id", task.TaskID, "error", err)
			continue
		}
		sent++
	}

	logger.Info("Checked deadlines", "due", len(due), "sent", sent)
	return sent, nil
}

// MorningBriefingWorkflow sends every user one message listing the open
// tasks due today (UTC day of the run).
func (r *Reminders) MorningBriefingWorkflow(ctx workflow.Context) (int, error) {
	ctx = workflow.WithActivityOptions(ctx, defaultActivityOptions())
	logger := workflow.GetLogger(ctx)

	from, to := dayBounds(workflow.Now(ctx))

	var due []models.DueTask
	if err := workflow.ExecuteActivity(ctx, r.ListTasksDueBetween, from, to).Get(ctx, &due); err != nil {
		return 0, err
	}
	if len(due) == 0 {
		logger.Info("No tasks for today. Skipping briefing.")
		return 0, nil
	}

	sent := 0
	for _, b := range groupBriefings(due) {
		if b.TelegramID == 0 {
			continue
		}
		if err := workflow.ExecuteActivity(ctx, r.SendBriefing, b).Get(ctx, nil); err != nil {
			logger.Error("SendBriefing fails", "user_id", b.UserID, "error", err)
			continue
		}
		sent++
	}

	logger.Info("Sent morning briefing", "users", sent)
	return sent, nil
}

func (r *Reminders) ListDueTasks(ctx context.Context, now time.Time, window time.Duration) ([]models.DueTask, error) {
	return r.tasks.ListDueTasks(ctx, now, window)
}

func (r *Reminders) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.DueTask, error) {
	return r.tasks.ListTasksDueBetween(ctx, from, to)
}

// NotifyTask marks the task before sending so a retry never repeats a
// delivered message. A failed send clears the mark again.
func (r *Reminders) NotifyTask(ctx context.Context, now time.Time, task models.DueTask) error {
	var text string
	switch task.Kind {
	case models.ReminderKindUpcoming:
		text = UpcomingMessage(now, task)
	case models.ReminderKindExpired:
		text = ExpiredMessage(task)
	default:
		return temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown reminder kind %q", task.Kind), "reminders.UnknownKind", nil)
	}

	if err := r.tasks.MarkReminded(ctx, task.UserID, task.TaskID, task.Kind); err != nil {
		return err
	}

	if err := r.notifier.SendMessage(ctx, task.TelegramID, text); err != nil {
		activity.GetLogger(ctx).Error("SendMessage fails", "task_id", task.TaskID, "error", err)
		if clearErr := r.tasks.ClearReminded(ctx, task.UserID, task.TaskID, task.Kind); clearErr != nil {
			activity.GetLogger(ctx).Error("ClearReminded fails", "task_id", task.TaskID, "error", clearErr)
			return errors.Join(err, clearErr)
		}
		return err
	}
	metrics.RemindersSent.WithLabelValues(string(task.Kind)).Inc()
	return nil
}

func (r *Reminders) SendBriefing(ctx context.Context, b Briefing) error {
	if err := r.notifier.SendMessage(ctx, b.TelegramID, BriefingMessage(b.Titles)); err != nil {
		activity.GetLogger(ctx).Error("SendMessage fails", "user_id", b.UserID, "error", err)
		return err
	}
	metrics.RemindersSent.WithLabelValues("briefing").Inc()
	return nil
}

func defaultActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				"reminders.UnknownKind",
			},
		},
	}
}
