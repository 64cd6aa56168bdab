package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mogaika/diva_mot/batch"
)

func logger() log.FieldLogger {
	return log.StandardLogger()
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var snapshot bool
	cmd := &cobra.Command{
		Use:   "batch <src-dir> <dst-dir>",
		Short: "Qualify, sort and re-encode every record of directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			q, err := ctx.qualifier()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipeline := &batch.Pipeline{Qualifier: q, Names: db.Names, Ranks: db.Ranks, Snapshot: snapshot}
			results, err := batch.Run(runCtx, batch.Job{
				Src:     args[0],
				Dst:     args[1],
				Workers: workers,
				Convert: pipeline.Convert,
				Log:     logger(),
			})

			failed := 0
			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Failed() {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", res.File, res.Err)
				} else {
					fmt.Fprintf(out, "ok   %s (%d bytes)\n", res.File, res.Size)
				}
			}
			if err != nil {
				return err
			}
			if failed != 0 {
				return errors.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Number of workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Freeze keyed channels to first key")
	return cmd
}
