// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms and optionally skins model geometry.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades model surfaces with the light rig, the shadow map
// and tone mapping.
//
//go:embed mesh.frag
var MeshFragmentShader string

// DepthVertexShader renders geometry into the shadow map.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the empty fragment stage of the depth pass.
//
//go:embed depth.frag
var DepthFragmentShader string

// LineVertexShader draws colored helper lines.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader draws colored helper lines.
//
//go:embed line.frag
var LineFragmentShader string
