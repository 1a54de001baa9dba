// Package shaders holds the GLSL sources of the fixed mesh program.
package shaders

import _ "embed"

// Vertex transforms positions by projection, view and world and passes the
// world-space normal on.
//
//go:embed mesh.vert
var Vertex string

// Fragment shades with a single half-Lambert directional light.
//
//go:embed mesh.frag
var Fragment string
