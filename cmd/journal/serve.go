package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/journal/internal/api"
	"github.com/pbaille/journal/internal/logger"
)

func serveCmd() *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reflections API and the static front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Addr()
			}
			if !cmd.Flags().Changed("static") {
				static = cfg.StaticDir
			}

			log := logger.New("journal-server", os.Stderr, cfg.LogLevel)
			st := getStore(log)
			log.Info().Str("data_file", st.Path()).Msg("using reflections file")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.New(st, addr, api.WithStaticDir(static), api.WithLogger(log))
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default $JOURNAL_HOST:$JOURNAL_PORT, :8000)")
	cmd.Flags().StringVar(&static, "static", "", "directory served for non-API paths (default $JOURNAL_STATIC_DIR or .)")
	return cmd
}
