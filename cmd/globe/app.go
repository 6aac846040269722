package main

import (
	"context"
	"fmt"
	"log/slog"

	"dynastyglobe/config"
	"dynastyglobe/dataset"
	"dynastyglobe/globe"
	"dynastyglobe/logging"
	"dynastyglobe/server"
	"dynastyglobe/supervisor"
	"dynastyglobe/territory"
)

// newSource returns an HTTP source when a base URL is configured and a
// directory source otherwise.
func newSource(s config.DatasetSettings) (dataset.Source, error) {
	if s.BaseURL != "" {
		src, err := dataset.NewHTTPSource(dataset.HTTPConfig{
			BaseURL:        s.BaseURL,
			Timeout:        s.Timeout,
			MaxFailures:    s.BreakerFailures,
			BreakerTimeout: s.BreakerTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("dataset source: %w", err)
		}
		logging.Info().Str("base_url", s.BaseURL).Msg("loading dynasties over http")
		return src, nil
	}
	logging.Info().Str("dir", s.Dir).Msg("loading dynasties from disk")
	return dataset.NewFileSource(s.Dir), nil
}

func builderOptions(g config.GlobeSettings, program territory.ShaderProgram) territory.Options {
	return territory.Options{
		GroundRadius:  g.GroundRadius,
		SurfaceMargin: g.SurfaceMargin,
		Depth:         g.ExtrudeDepth,
		Intensity:     g.Intensity,
		Program:       program,
	}
}

func engineConfig(s *config.Settings) globe.Config {
	cfg := globe.DefaultConfig()
	cfg.RotationStep = s.Globe.RotationStep
	cfg.TimeStep = s.Globe.TimeStep
	return cfg
}

// stream bundles the websocket side: the hub, the scene feeding it and the
// services the supervisor runs.
type stream struct {
	hub   *server.Hub
	scene *server.StreamScene
}

func newStream(s config.ServerSettings) *stream {
	hub := server.NewHub()
	return &stream{hub: hub, scene: server.NewStreamScene(hub, s.BroadcastEvery)}
}

// tree builds the supervisor tree for engine. A frame loop is added to the
// render layer only when headless is set; a windowed run ticks from its own
// loop.
func (st *stream) tree(s config.ServerSettings, engine *globe.Engine, source dataset.Source, headless bool, logger *slog.Logger) *supervisor.Tree {
	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	if headless {
		tree.AddRenderService(supervisor.NewFrameLoop(engine, s.TickRate))
	}

	handler := server.NewHandler(engine, st.hub, server.Options{
		CORSOrigins: s.CORSOrigins,
		SelectRate:  s.SelectRate,
		SelectBurst: s.SelectBurst,
		Breaker:     breakerOf(source),
	})
	tree.AddAPIService(st.hub)
	tree.AddAPIService(server.NewHTTPService(s.Addr(), handler.Router()))
	return tree
}

// selectInitial starts loading key when one was given on the command line.
func selectInitial(ctx context.Context, engine *globe.Engine, key string) error {
	if key == "" {
		return nil
	}
	if !dataset.Known(key) {
		return fmt.Errorf("%w: %q (see 'globe dynasties')", dataset.ErrUnknownKey, key)
	}
	go func() {
		if err := engine.Select(ctx, key); err != nil {
			logging.Warn().Err(err).Str("dynasty", key).Msg("initial selection failed")
		}
	}()
	return nil
}

// breakerOf returns the circuit breaker behind source, if it has one.
func breakerOf(source dataset.Source) server.Breaker {
	if b, ok := source.(server.Breaker); ok {
		return b
	}
	return nil
}
