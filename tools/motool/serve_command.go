package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mogaika/diva_mot/status"
	"github.com/mogaika/diva_mot/vfs"
	"github.com/mogaika/diva_mot/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr, webPath string
	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Browse directory of records over http",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			hub := status.NewHub()
			hubCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go hub.Run(hubCtx)

			return web.StartServer(addr, &web.Server{
				Dir:    vfs.NewDirectoryDriver(args[0]),
				DB:     db,
				Status: hub,
				FPS:    cfg.FPS,
			}, webPath)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "i", ":8000", "Address of server")
	cmd.Flags().StringVar(&webPath, "web", "", "Path to folder with static web data")
	return cmd
}
