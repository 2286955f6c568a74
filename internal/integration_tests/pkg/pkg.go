//go:build integration

package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"tasktracker/internal/config"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/saga"
	"tasktracker/internal/services"
	"tasktracker/internal/shard"
)

// TestDeps хранит зависимости для тестов
type TestDeps struct {
	ShardManager   *shard.ShardManager
	TemporalClient client.Client
	IDs            *id.Generator
	UserService    *services.UserService
	Categories     *services.CategoryService
	Tasks          *services.TaskService
	UserSaga       *saga.UserSagaWorkflow
	Workers        []worker.Worker
}

// SetupTest поднимает шарды, Temporal-клиент и воркер регистрации.
// Базы очищаются перед каждым тестом.
func SetupTest(t *testing.T) *TestDeps {
	t.Helper()

	const configPath = "../pkg/config.yaml"
	conf, err := config.LoadConfig(configPath)
	require.NoError(t, err, "failed to load config")
	logger.InitLogger(conf.Debug)

	ctx := context.Background()

	shardManager, err := shard.NewShardManager(ctx, conf)
	require.NoError(t, err, "failed to initialize ShardManager")

	// Очистка БД перед тестами
	require.NoError(t, shardManager.ClearDatabases(ctx), "failed to reset shards")

	temporalClient, err := client.Dial(client.Options{
		HostPort:  conf.Temporal.HostPort,
		Namespace: conf.Temporal.Namespace,
	})
	require.NoError(t, err, "unable to create Temporal client")

	ids, err := id.Bootstrap(conf.Snowflake.MachineID)
	require.NoError(t, err)

	userService := services.NewUserService(shardManager)
	categories := services.NewCategoryService(shardManager, ids)
	tasks := services.NewTaskService(shardManager, ids, categories)
	userSaga := saga.NewUserSagaWorkflow(userService, ids, temporalClient)

	workers, err := saga.StartWorkers(temporalClient, userSaga.Queue())
	require.NoError(t, err)

	// Очищаем ресурсы после теста
	t.Cleanup(func() {
		saga.StopWorkers(workers)
		temporalClient.Close()
		shardManager.Close()
	})

	// Ждём инициализации перед началом тестов
	time.Sleep(500 * time.Millisecond)

	return &TestDeps{
		ShardManager:   shardManager,
		TemporalClient: temporalClient,
		IDs:            ids,
		UserService:    userService,
		Categories:     categories,
		Tasks:          tasks,
		UserSaga:       userSaga,
		Workers:        workers,
	}
}
