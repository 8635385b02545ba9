/*
Package chunk reads and writes chunked containers, the envelope format of
compiled material packages.

A container is a plain sequence of chunks, without a global header:

	+-------------+------------+--------------------+
	| tag (u64)   | size (u32) | payload[size]      |
	+-------------+------------+--------------------+
	| tag (u64)   | size (u32) | payload[size]      |
	+-------------+------------+--------------------+
	  …

All integers are little-endian. A tag consists of eight ASCII characters,
e.g. `MAT_NAME` or `MAT_GLSL`. Package `chunk` will not interpret payloads,
but rather just expose them to clients; that is the job of package `shader`.

Parsing keeps the container's bytes in memory and hands out sub-slices of it.
Clients must treat payloads as read-only.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package chunk

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.chunk'
func tracer() tracing.Trace {
	return tracing.Select("matpack.chunk")
}
