// Package config loads the viewer and server settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// GLOBE_* environment variables. GLOBE_SERVER_PORT=9000 sets server.port.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"dynastyglobe/logging"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GLOBE_"

// PathEnvVar overrides the config file location.
const PathEnvVar = "GLOBE_CONFIG"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{
	"globe.yaml",
	"globe.yml",
}

type Settings struct {
	Globe   GlobeSettings   `koanf:"globe"`
	Dataset DatasetSettings `koanf:"dataset"`
	Window  WindowSettings  `koanf:"window"`
	Server  ServerSettings  `koanf:"server"`
	Logging logging.Config  `koanf:"logging"`
}

// GlobeSettings sizes the sphere and the territory patches and sets the
// per-frame animation increments.
type GlobeSettings struct {
	Radius        float64 `koanf:"radius" validate:"gt=0"`
	Segments      int     `koanf:"segments" validate:"min=3,max=512"`
	GroundRadius  float64 `koanf:"ground_radius" validate:"gtfield=Radius"`
	SurfaceMargin float64 `koanf:"surface_margin" validate:"gte=0"`
	ExtrudeDepth  float64 `koanf:"extrude_depth" validate:"gt=0"`
	Intensity     float64 `koanf:"intensity" validate:"gte=0"`
	RotationStep  float64 `koanf:"rotation_step"`
	TimeStep      float64 `koanf:"time_step" validate:"gt=0"`
}

// DatasetSettings selects where GeoJSON resources come from. BaseURL wins
// over Dir when set.
type DatasetSettings struct {
	Dir             string        `koanf:"dir" validate:"required_without=BaseURL"`
	BaseURL         string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type WindowSettings struct {
	Width          int     `koanf:"width" validate:"min=320"`
	Height         int     `koanf:"height" validate:"min=240"`
	Title          string  `koanf:"title"`
	FPS            int     `koanf:"fps" validate:"min=1,max=240"`
	CameraDistance float32 `koanf:"camera_distance" validate:"gt=0"`
	FOV            float32 `koanf:"fov" validate:"gt=0,lt=180"`
}

// ServerSettings configures the headless stream. TickRate is frames per
// second, BroadcastEvery the number of frames between websocket frame
// messages and SelectRate the select messages per second allowed per client.
type ServerSettings struct {
	Host           string   `koanf:"host"`
	Port           int      `koanf:"port" validate:"min=1,max=65535"`
	TickRate       int      `koanf:"tick_rate" validate:"min=1,max=240"`
	BroadcastEvery int      `koanf:"broadcast_every" validate:"min=1"`
	SelectRate     float64  `koanf:"select_rate" validate:"gt=0"`
	SelectBurst    int      `koanf:"select_burst" validate:"min=1"`
	CORSOrigins    []string `koanf:"cors_origins"`
}

// Addr returns host:port.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Globe: GlobeSettings{
			Radius:        150,
			Segments:      64,
			GroundRadius:  152,
			SurfaceMargin: 1,
			ExtrudeDepth:  4,
			Intensity:     1.2,
			RotationStep:  0.0009,
			TimeStep:      0.02,
		},
		Dataset: DatasetSettings{
			Dir:             "data",
			Timeout:         10 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Window: WindowSettings{
			Width:          1280,
			Height:         800,
			Title:          "Dynasty Globe",
			FPS:            60,
			CameraDistance: 400,
			FOV:            45,
		},
		Server: ServerSettings{
			Host:           "",
			Port:           8080,
			TickRate:       60,
			BroadcastEvery: 6,
			SelectRate:     2,
			SelectBurst:    4,
			CORSOrigins:    []string{"*"},
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads settings from defaults, the config file and the environment.
// An explicit path must exist; otherwise the default paths are optional.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if configPath != "" {
		logging.Debug().Str("path", configPath).Msg("loaded settings file")
	}
	return s, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks every section against its constraints.
func (s *Settings) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate.Struct(s)
}

func findConfigFile(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(PathEnvVar)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// envTransformFunc maps GLOBE_SECTION_SOME_KEY to section.some_key. The
// config path variable itself is not a setting.
func envTransformFunc(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
