package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramsDeclareUniforms(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		uniforms []string
	}{
		{"heatmap vertex", Heatmap().Vertex, []string{UniformModel, UniformView, UniformProjection}},
		{"heatmap fragment", Heatmap().Fragment, []string{UniformTime, UniformIntensity}},
		{"globe vertex", Globe().Vertex, []string{UniformModel, UniformView, UniformProjection}},
		{"globe fragment", Globe().Fragment, []string{UniformLightDir}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(strings.TrimSpace(tc.source), "#version 410 core"))
			for _, u := range tc.uniforms {
				assert.Contains(t, tc.source, " "+u+";", "uniform %s", u)
			}
		})
	}
}

func TestProgramNames(t *testing.T) {
	assert.Equal(t, "heatmap", Heatmap().Name)
	assert.Equal(t, "globe", Globe().Name)
}
