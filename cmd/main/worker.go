package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"tasktracker/internal/logger"
	"tasktracker/internal/reminders"
	"tasktracker/internal/saga"
	"tasktracker/internal/telegram"
)

func newWorkerCmd(configPath *string) *cobra.Command {
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run Temporal workers for registration and reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			bot := telegram.NewClient(a.conf.Telegram.BotToken, a.conf.Telegram.APIURL)
			rem := reminders.New(a.tasks, bot)

			workers, err := saga.StartWorkers(a.temporalClient,
				a.registration.Queue(),
				saga.Queue{Name: reminders.TaskQueue, Register: rem.Register},
			)
			if err != nil {
				return err
			}
			defer saga.StopWorkers(workers)

			if !noSchedule {
				err = rem.Schedule(ctx, a.temporalClient, reminders.ScheduleOptions{
					DeadlineCheckCron: a.conf.Reminders.DeadlineCheckCron,
					BriefingCron:      a.conf.Reminders.BriefingCron,
					PreNotifyWindow:   a.conf.Reminders.PreNotifyWindow,
				})
				if err != nil {
					return err
				}
			}

			<-ctx.Done()
			logger.L().Info("Stopping workers...")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "do not start the cron workflows")
	return cmd
}
