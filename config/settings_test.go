package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, 150.0, s.Globe.Radius)
	assert.Equal(t, 152.0, s.Globe.GroundRadius)
	assert.Equal(t, 4.0, s.Globe.ExtrudeDepth)
	assert.Equal(t, 1.2, s.Globe.Intensity)
	assert.Equal(t, 0.0009, s.Globe.RotationStep)
	assert.Equal(t, 0.02, s.Globe.TimeStep)
	assert.Equal(t, float32(400), s.Window.CameraDistance)
	assert.Equal(t, ":8080", s.Server.Addr())
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(PathEnvVar, "")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Globe, s.Globe)
	assert.Equal(t, []string{"*"}, s.Server.CORSOrigins)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
globe:
  extrude_depth: 6
dataset:
  base_url: https://tiles.example.com/dynasties
  timeout: 3s
server:
  port: 9000
logging:
  level: debug
  format: json
`), 0o644))

	t.Setenv("GLOBE_SERVER_PORT", "9100")
	t.Setenv("GLOBE_SERVER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("GLOBE_GLOBE_TIME_STEP", "0.05")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6.0, s.Globe.ExtrudeDepth)
	assert.Equal(t, 0.05, s.Globe.TimeStep)
	assert.Equal(t, 152.0, s.Globe.GroundRadius, "untouched defaults survive")
	assert.Equal(t, "https://tiles.example.com/dynasties", s.Dataset.BaseURL)
	assert.Equal(t, 3*time.Second, s.Dataset.Timeout)
	assert.Equal(t, 9100, s.Server.Port, "env wins over file")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.Server.CORSOrigins)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  title: Tang\n"), 0o644))
	t.Setenv(PathEnvVar, path)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Tang", s.Window.Title)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"ground radius inside globe", func(s *Settings) { s.Globe.GroundRadius = 100 }},
		{"zero depth", func(s *Settings) { s.Globe.ExtrudeDepth = 0 }},
		{"zero time step", func(s *Settings) { s.Globe.TimeStep = 0 }},
		{"no dataset location", func(s *Settings) { s.Dataset.Dir = "" }},
		{"bad base url", func(s *Settings) { s.Dataset.BaseURL = "not a url" }},
		{"port out of range", func(s *Settings) { s.Server.Port = 70000 }},
		{"fov too wide", func(s *Settings) { s.Window.FOV = 180 }},
		{"bad log level", func(s *Settings) { s.Logging.Level = "chatty" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(s)
			assert.Error(t, s.Validate())
		})
	}

	s := Default()
	s.Dataset.Dir = ""
	s.Dataset.BaseURL = "http://localhost:9999/data"
	assert.NoError(t, s.Validate())
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "server.port", envTransformFunc("GLOBE_SERVER_PORT"))
	assert.Equal(t, "globe.ground_radius", envTransformFunc("GLOBE_GLOBE_GROUND_RADIUS"))
	assert.Equal(t, "", envTransformFunc(PathEnvVar))
}
