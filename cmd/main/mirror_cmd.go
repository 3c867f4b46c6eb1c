package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/repository"
	"github.com/UnknownOlympus/roster-console/internal/server"
	"github.com/UnknownOlympus/roster-console/internal/services/mirror"
)

var errNoDatabase = errors.New("postgres is not configured, set postgres.host and postgres.db_name")

func newMirrorCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy divisions and employees into Postgres, periodically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if !a.cfg.Postgres.Configured() {
				return errNoDatabase
			}

			dtb, err := repository.NewDatabase(ctx, a.cfg.Postgres)
			if err != nil {
				return fmt.Errorf("failed to connect to DB: %w", err)
			}
			defer dtb.Close()

			repo := repository.NewRepository(dtb, a.metrics)
			service := mirror.NewService(a.log, a.api, repo, a.metrics)

			if once {
				run, runErr := service.ProcessRoster(ctx)
				if runErr != nil {
					return runErr
				}
				fmt.Fprintln(a.out, a.render.MirrorRun(run))
				return nil
			}

			var wgr sync.WaitGroup
			if port := a.cfg.Monitoring.Port; port > 0 {
				wgr.Add(1)
				go func() {
					defer wgr.Done()
					server.StartMonitoringServer(ctx, a.log, a.reg, dtb, port, a.api.BaseURL())
				}()
			}

			a.log.InfoContext(ctx, "Starting Mirror Service")
			err = service.Start(ctx, a.cfg.Mirror.Interval)
			if err != nil {
				a.log.ErrorContext(ctx, "Mirror Service failed", sl.Err(err))
			}
			a.log.InfoContext(ctx, "Mirror Service stopped.")

			// stops the monitoring server when the service ended on its own
			cancel()

			wgr.Wait()

			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single mirror pass and exit")

	return cmd
}
