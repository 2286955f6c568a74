package main

import (
	"context"
	"fmt"
	"go.temporal.io/sdk/client"
	"tasktracker/internal/config"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/metrics"
	"tasktracker/internal/profile"
	"tasktracker/internal/saga"
	"tasktracker/internal/services"
	"tasktracker/internal/shard"
)

// app holds everything a long-running command needs. The id generator is
// built once here and handed to every component that allocates ids.
type app struct {
	conf           *config.Config
	ids            *id.Generator
	shardManager   *shard.ShardManager
	temporalClient client.Client

	users        *services.UserService
	categories   *services.CategoryService
	tasks        *services.TaskService
	registration *saga.UserSagaWorkflow
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger.InitLogger(conf.Debug)

	if err := conf.RequireDatabase(); err != nil {
		return nil, err
	}

	profile.StartPprof(conf.Pprof.Addr)

	ids, err := id.Bootstrap(conf.Snowflake.MachineID)
	if err != nil {
		return nil, fmt.Errorf("failed to init id generator: %w", err)
	}
	logger.L().Infow("id generator ready", "machine_id", ids.MachineID())
	idSource := metrics.InstrumentIDs(ids)

	shardManager, err := shard.NewShardManager(ctx, conf)
	if err != nil {
		return nil, err
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  conf.Temporal.HostPort,
		Namespace: conf.Temporal.Namespace,
	})
	if err != nil {
		shardManager.Close()
		return nil, fmt.Errorf("unable to create Temporal client: %w", err)
	}
	logger.L().Info("Connected to Temporal successfully")

	users := services.NewUserService(shardManager)
	categories := services.NewCategoryService(shardManager, idSource)

	return &app{
		conf:           conf,
		ids:            ids,
		shardManager:   shardManager,
		temporalClient: temporalClient,
		users:          users,
		categories:     categories,
		tasks:          services.NewTaskService(shardManager, idSource, categories),
		registration:   saga.NewUserSagaWorkflow(users, idSource, temporalClient),
	}, nil
}

func (a *app) Close() {
	a.temporalClient.Close()
	a.shardManager.Close()
	logger.Sync()
}
