package saga

import (
	"fmt"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"tasktracker/internal/logger"
)

// Queue описывает очередь задач Temporal и то, что на ней регистрируется
type Queue struct {
	Name     string
	Register func(r worker.Registry)
}

// Queue возвращает очередь регистрации пользователей
func (s *UserSagaWorkflow) Queue() Queue {
	return Queue{
		Name: TaskQueue,
		Register: func(r worker.Registry) {
			// Регистрируем workflow
			r.RegisterWorkflow(s.RegisterUserWorkflow)

			r.RegisterActivity(s.CreateTelegramRecord)
			r.RegisterActivity(s.CreateUserRecord)
			r.RegisterActivity(s.DeleteTelegramRecordIfPresent)
		},
	}
}

// StartWorkers запускает по воркеру на каждую очередь. Если какой-то воркер
// не стартовал, уже запущенные останавливаются.
func StartWorkers(temporalClient client.Client, queues ...Queue) ([]worker.Worker, error) {
	workers := make([]worker.Worker, 0, len(queues))
	for _, q := range queues {
		w := worker.New(temporalClient, q.Name, worker.Options{})
		q.Register(w)

		if err := w.Start(); err != nil {
			StopWorkers(workers)
			return nil, fmt.Errorf("worker for %s failed to start: %w", q.Name, err)
		}
		logger.L().Infow("Worker started successfully", "task_queue", q.Name)
		workers = append(workers, w)
	}
	return workers, nil
}

func StopWorkers(workers []worker.Worker) {
	for _, w := range workers {
		w.Stop()
	}
}
