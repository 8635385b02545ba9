/*
Package shader exposes the shader variants of a compiled material package.

A material package is a chunk container (see package chunk). Package shader
knows the chunks a material compiler emits:

	MAT_NAME   UTF-8 material name
	MAT_VERS   u32 material version
	MAT_PARM   parameter table
	MAT_GLSL   shaders for the OpenGL backend
	MAT_SPIR   shaders for the Vulkan backend
	MAT_METL   shaders for the Metal backend

A shader chunk starts with a table of fixed-size records, followed by a data
area holding the shaders' bytes:

	+-----------+
	| count u32 |
	+-----------+-----------+-----------+------------+----------+
	| model u16 | stage u8  | flags u8  | offset u32 | size u32 |   × count
	+-----------+-----------+-----------+------------+----------+
	| data area …                                               |
	+-----------------------------------------------------------+

Record offsets are relative to the start of the data area. The bytes of a
shader are opaque to this package: SPIR-V binaries, GLSL or MSL text are all
handed out as they are.

A Reader is bound to one backend and performs no caching beyond its own
lifetime. Readers are not safe for concurrent use; concurrent compiles should
each parse their own Reader from the (shared, read-only) package bytes.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package shader

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.shader'
func tracer() tracing.Trace {
	return tracing.Select("matpack.shader")
}
