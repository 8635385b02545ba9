/*
Package blob encodes material packages as indexed blobs.

An indexed blob is a self-describing artifact which runtime loaders can
index randomly by variant key. It consists of four contiguous regions:

	+---------------------+
	| reflectionSize  u32 |
	+---------------------+
	| reflection bytes    |   JSON text, see package matquery
	+---------------------+
	| entryCount      u32 |
	+---------------------+-------------+-----------+
	| key u32             | offset u32  | size u32  |   × entryCount
	+---------------------+-------------+-----------+
	| shader contents …                             |
	+-----------------------------------------------+

All integers are little-endian (ByteOrder). Offsets are absolute, i.e.
relative to the start of the blob, and point into the content region.
Contents are stored in index order without gaps, thus

	entries[0].Offset   == headerSize
	entries[i+1].Offset == entries[i].Offset + entries[i].Size

Encoding is a single forward pass: Plan computes the complete layout (fetching
all shader contents), then WriteTo emits it. No byte is written before every
offset is known, and nothing is patched afterwards.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package blob

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.blob'
func tracer() tracing.Trace {
	return tracing.Select("matpack.blob")
}
