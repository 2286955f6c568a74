//go:build integration

package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/integration_tests/pkg"
	"tasktracker/internal/models"
)

func TestTaskLifecycle(t *testing.T) {
	deps := pkg.SetupTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, _, err := deps.UserSaga.RegisterTelegramUser(ctx, models.TelegramAuth{TelegramID: 4242, Username: "bob"})
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Minute).UTC()
	first, err := deps.Tasks.CreateTask(ctx, user.ID, models.NewTask{Title: "write report", CategoryName: "work", Deadline: &deadline})
	require.NoError(t, err)
	second, err := deps.Tasks.CreateTask(ctx, user.ID, models.NewTask{Title: "review", CategoryName: "work"})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)
	require.Equal(t, first.CategoryID, second.CategoryID)

	categories, err := deps.Categories.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	due, err := deps.Tasks.ListDueTasks(ctx, time.Now(), 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, models.ReminderKindUpcoming, due[0].Kind)
	require.NoError(t, deps.Tasks.MarkReminded(ctx, user.ID, first.ID, models.ReminderKindUpcoming))
	require.NoError(t, deps.Tasks.ClearReminded(ctx, user.ID, first.ID, models.ReminderKindUpcoming))

	due, err = deps.Tasks.ListDueTasks(ctx, time.Now(), 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.NoError(t, deps.Tasks.MarkReminded(ctx, user.ID, first.ID, models.ReminderKindUpcoming))

	due, err = deps.Tasks.ListDueTasks(ctx, time.Now(), 10*time.Minute)
	require.NoError(t, err)
	require.Empty(t, due)

	done := true
	updated, err := deps.Tasks.UpdateTask(ctx, user.ID, first.ID, models.TaskUpdate{IsCompleted: &done})
	require.NoError(t, err)
	require.True(t, updated.IsCompleted)

	require.NoError(t, deps.Tasks.DeleteTask(ctx, user.ID, second.ID))
	_, err = deps.Tasks.GetTask(ctx, user.ID, second.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
