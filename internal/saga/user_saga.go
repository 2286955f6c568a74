package saga

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
	"time"
)

const TaskQueue = "user-task-queue"

const errTypeCompensationCompleted = "apperrors.ErrCompensationCompleted"
const errTypeAlreadyRegistered = "saga.AlreadyRegistered"

// User saga step constants
type userStep int

const userStepNoCompensations userStep = 0
const userStepTelegramCreated userStep = 1

type userService interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	CreateTelegramRecord(ctx context.Context, userID, telegramID int64) error
	DeleteTelegramRecordIfPresent(ctx context.Context, userID, telegramID int64) error
	CreateUserRecord(ctx context.Context, user models.User) error
}

type UserSagaWorkflow struct {
	userService    userService
	ids            id.Source
	temporalClient client.Client
}

func NewUserSagaWorkflow(userService userService, ids id.Source, client client.Client) *UserSagaWorkflow {
	return &UserSagaWorkflow{
		userService:    userService,
		ids:            id.OrFallback(ids),
		temporalClient: client,
	}
}

// RegisterTelegramUser возвращает пользователя по telegram_id, создавая его при первом обращении.
// Второй результат сообщает, был ли пользователь создан этим вызовом.
func (s *UserSagaWorkflow) RegisterTelegramUser(ctx context.Context, auth models.TelegramAuth) (*models.User, bool, error) {
	if auth.TelegramID <= 0 {
		return nil, false, fmt.Errorf("telegram id must be positive: %w", apperrors.ErrInvalidInput)
	}

	existing, err := s.userService.FindByTelegramID(ctx, auth.TelegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	// ID выделяется до старта workflow: ошибка часов не должна ретраиться Temporal
	userID, err := s.ids.NextID()
	if err != nil {
		return nil, false, fmt.Errorf("failed to allocate user id: %w", err)
	}
	user := services.NewUserFromTelegram(userID, auth)

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("register-telegram-%d", auth.TelegramID),
		TaskQueue: TaskQueue,
	}

	// Запускаем workflow
	we, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, s.RegisterUserWorkflow, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to start workflow: %w", err)
	}

	// Ожидаем завершения (синхронно)
	var resUserID int64
	err = we.Get(ctx, &resUserID)
	if err != nil {
		// параллельная регистрация того же telegram_id могла выиграть гонку
		if winner, findErr := s.userService.FindByTelegramID(ctx, auth.TelegramID); findErr == nil {
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to get workflow result: %w", err)
	}

	created, err := s.userService.FindByTelegramID(ctx, auth.TelegramID)
	if err != nil {
		return nil, false, err
	}
	logger.L().Infow("user registered", "user_id", created.ID, "telegram_id", auth.TelegramID)
	return created, created.ID == userID, nil
}

func (s *UserSagaWorkflow) RegisterUserWorkflow(ctx workflow.Context, user models.User) (res int64, err error) {
	ctx = workflow.WithActivityOptions(ctx, s.getDefaultOptions())
	logger := workflow.GetLogger(ctx)
	logger.Debug("RegisterUserWorkflow start")

	logger.Debug("CreateTelegramRecord start")
	err = workflow.ExecuteActivity(ctx, s.CreateTelegramRecord, user.ID, user.TelegramID).Get(ctx, nil)
	if err != nil {
		logger.Error("CreateTelegramRecord fails", zap.Error(err))
		return 0, s.UserCompensations(ctx, userStepNoCompensations, err, user)
	}
	logger.Debug("CreateTelegramRecord stop")

	logger.Debug("CreateUserRecord start")
	err = workflow.ExecuteActivity(ctx, s.CreateUserRecord, user).Get(ctx, nil)
	if err != nil {
		logger.Error("CreateUserRecord fails", zap.Error(err))
		return 0, s.UserCompensations(ctx, userStepTelegramCreated, err, user)
	}
	logger.Debug("CreateUserRecord stop")

	logger.Debug("RegisterUserWorkflow completed")
	return user.ID, nil
}

func (s *UserSagaWorkflow) CreateTelegramRecord(ctx context.Context, userID, telegramID int64) error {
	err := s.userService.CreateTelegramRecord(ctx, userID, telegramID)
	if pgErr, ok := lo.ErrorsAs[*pgconn.PgError](err); ok && pgErr.Code == pgerrcode.UniqueViolation {
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeAlreadyRegistered, err)
	}
	return err
}

func (s *UserSagaWorkflow) CreateUserRecord(ctx context.Context, user models.User) error {
	err := s.userService.CreateUserRecord(ctx, user)
	if pgErr, ok := lo.ErrorsAs[*pgconn.PgError](err); ok && pgErr.Code == pgerrcode.UniqueViolation {
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeAlreadyRegistered, err)
	}
	return err
}

func (s *UserSagaWorkflow) DeleteTelegramRecordIfPresent(ctx context.Context, userID, telegramID int64) error {
	return s.userService.DeleteTelegramRecordIfPresent(ctx, userID, telegramID)
}

// UserCompensations handles the compensation logic for the user saga
func (s *UserSagaWorkflow) UserCompensations(
	ctx workflow.Context,
	stepNumber userStep,
	err error,
	user models.User,
) error {
	logger := workflow.GetLogger(ctx)
	logger.Debug("User Compensations start")

	switch stepNumber {
	case userStepTelegramCreated:
		logger.Debug("userStepTelegramCreated compensation start")
		compensateErr := workflow.ExecuteActivity(ctx, s.DeleteTelegramRecordIfPresent, user.ID, user.TelegramID).Get(ctx, nil)
		if compensateErr != nil {
			logger.Debug("userStepTelegramCreated compensation error", zap.Error(compensateErr))
			return compensateErr
		}
		fallthrough
	case userStepNoCompensations:
		logger.Debug("userStepNoCompensations start")
		return temporal.NewNonRetryableApplicationError(apperrors.ErrCompensationCompleted.Error(),
			errTypeCompensationCompleted, errors.Join(apperrors.ErrCompensationCompleted, err))
	}

	return err
}

func (s *UserSagaWorkflow) getDefaultOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		ScheduleToCloseTimeout: 10 * time.Second,
		StartToCloseTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				errTypeCompensationCompleted,
				errTypeAlreadyRegistered,
			},
		},
	}
}
