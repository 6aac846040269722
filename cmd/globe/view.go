package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dynastyglobe/dataset"
	"dynastyglobe/globe"
	"dynastyglobe/logging"
	"dynastyglobe/rendering/opengl"
	"dynastyglobe/rendering/opengl/shaders"
	"dynastyglobe/territory"
)

func newViewCommand() *cobra.Command {
	var (
		initial string
		serve   bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the globe window",
		Long: "Open the globe window. Keys 1-9 select a dynasty in chronological order,\n" +
			"C clears the overlay, dragging orbits the camera and the wheel zooms.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := settingsFrom(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source, err := newSource(settings.Dataset)
			if err != nil {
				return err
			}

			keys := dataset.Keys()
			var engine *globe.Engine
			renderer, err := opengl.NewRenderer(opengl.Options{
				Width:          settings.Window.Width,
				Height:         settings.Window.Height,
				Title:          settings.Window.Title,
				GlobeRadius:    float32(settings.Globe.Radius),
				Segments:       settings.Globe.Segments,
				CameraDistance: settings.Window.CameraDistance,
				FOV:            settings.Window.FOV,
				Keys:           keys,
				OnSelect: func(slot int) {
					if slot < len(keys) {
						engine.SelectAsync(keys[slot])
					}
				},
				OnClear: func() { engine.Clear() },
			})
			if err != nil {
				return err
			}
			defer renderer.Terminate()

			var scene globe.Scene = renderer
			var st *stream
			if serve {
				st = newStream(settings.Server)
				scene = globe.MultiScene{renderer, st.scene}
			}

			builder := territory.NewBuilder(builderOptions(settings.Globe, shaders.Heatmap()))
			engine = globe.NewEngine(engineConfig(settings), scene, source, builder)

			if st != nil {
				tree := st.tree(settings.Server, engine, source, false, logging.NewSlogLogger())
				errs := tree.ServeBackground(ctx)
				defer func() {
					stop()
					if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
						logging.Error().Err(err).Msg("supervisor stopped")
					}
				}()
				logging.Info().Str("addr", settings.Server.Addr()).Msg("streaming overlay")
			}

			if err := selectInitial(ctx, engine, initial); err != nil {
				return err
			}

			logging.Info().Int("fps", settings.Window.FPS).Msg("window open")
			renderer.Run(ctx, settings.Window.FPS, func() { engine.Tick() })
			engine.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "select", "", "dynasty key to load on start")
	cmd.Flags().BoolVar(&serve, "serve", false, "also run the HTTP API and websocket stream")
	return cmd
}
