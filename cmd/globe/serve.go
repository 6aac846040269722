package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dynastyglobe/globe"
	"dynastyglobe/logging"
	"dynastyglobe/rendering/opengl/shaders"
	"dynastyglobe/territory"
)

func newServeCommand() *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless and stream the overlay over a websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := settingsFrom(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source, err := newSource(settings.Dataset)
			if err != nil {
				return err
			}

			st := newStream(settings.Server)
			builder := territory.NewBuilder(builderOptions(settings.Globe, shaders.Heatmap()))
			engine := globe.NewEngine(engineConfig(settings), st.scene, source, builder)

			if err := selectInitial(ctx, engine, initial); err != nil {
				return err
			}

			logging.Info().
				Str("addr", settings.Server.Addr()).
				Int("tick_rate", settings.Server.TickRate).
				Msg("serving dynasty globe")

			tree := st.tree(settings.Server, engine, source, true, logging.NewSlogLogger())
			err = tree.Serve(ctx)
			engine.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			unstopped, _ := tree.UnstoppedServiceReport()
			for _, svc := range unstopped {
				logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
			}
			logging.Info().Msg("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "select", "", "dynasty key to load on start")
	return cmd
}
