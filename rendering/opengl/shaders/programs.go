// Package shaders holds the GLSL programs of the globe viewer and the helpers
// that compile them.
package shaders

import "dynastyglobe/territory"

// Uniform names shared by the programs and the renderer.
const (
	UniformModel      = "model"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformTime       = "time"
	UniformIntensity  = "intensity"
	UniformLightDir   = "lightDir"
)

const heatmapVertex = `
#version 410 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 vNormal;
out float vHeight;

void main() {
    vNormal = mat3(model) * normal;
    vHeight = position.z;
    gl_Position = projection * view * model * vec4(position, 1.0);
}
`

const heatmapFragment = `
#version 410 core

in vec3 vNormal;
in float vHeight;

uniform float time;
uniform float intensity;

out vec4 outColor;

void main() {
    // Slow pulse, brighter toward the extruded top.
    float pulse = 0.75 + 0.25 * sin(time * 2.0);
    float rim = 0.6 + 0.4 * clamp(vHeight / 4.0, 0.0, 1.0);
    vec3 base = vec3(1.0, 0.3, 0.0);
    vec3 color = base * pulse * rim * intensity;
    outColor = vec4(min(color, vec3(1.0)), 0.8);
}
`

const globeVertex = `
#version 410 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 uv;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 vNormal;
out vec2 vUV;

void main() {
    vNormal = mat3(model) * normal;
    vUV = uv;
    gl_Position = projection * view * model * vec4(position, 1.0);
}
`

const globeFragment = `
#version 410 core

in vec3 vNormal;
in vec2 vUV;

uniform vec3 lightDir;

out vec4 outColor;

void main() {
    // Ambient plus one directional light.
    vec3 n = normalize(vNormal);
    float diffuse = max(dot(n, normalize(lightDir)), 0.0);

    // Graticule every 15 degrees.
    vec2 grid = abs(fract(vUV * vec2(24.0, 12.0)) - 0.5);
    float line = 1.0 - smoothstep(0.0, 0.02, min(grid.x, grid.y));

    vec3 ocean = vec3(0.08, 0.22, 0.42);
    vec3 color = ocean * (0.45 + 0.8 * diffuse) + line * vec3(0.12);
    outColor = vec4(color, 1.0);
}
`

// Heatmap returns the program used for territory patches. It reads the time
// and intensity uniforms.
func Heatmap() territory.ShaderProgram {
	return territory.ShaderProgram{
		Name:     "heatmap",
		Vertex:   heatmapVertex,
		Fragment: heatmapFragment,
	}
}

// Globe returns the program used for the sphere.
func Globe() territory.ShaderProgram {
	return territory.ShaderProgram{
		Name:     "globe",
		Vertex:   globeVertex,
		Fragment: globeFragment,
	}
}
