package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the size of a chunk header: an 8-byte tag and a 4-byte size.
const HeaderSize = 8 + 4

// MaxChunkCount limits the number of chunks in a container. Real material
// packages carry a few dozen at most.
const MaxChunkCount = 4096

// --- Tag -------------------------------------------------------------------

// Tag identifies a chunk. It consists of eight ASCII characters, packed with the
// first character in the most significant byte.
type Tag uint64

// T returns a Tag from an (8-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "        ")[:8]
	return Tag(binary.BigEndian.Uint64([]byte(t)))
}

func (t Tag) String() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	return string(bytes.TrimRight(b[:], " \x00"))
}

// --- Chunk -----------------------------------------------------------------

// Chunk is a single chunk of a container.
type Chunk struct {
	Tag    Tag
	Offset uint32  // offset of the payload within the container
	Size   uint32  // payload size
	data   Segment // a chunk is a slice of container data
}

// Payload returns the chunk's payload as a navigable segment.
func (c Chunk) Payload() Segment {
	return c.data
}

// Bytes returns the payload. It is a view into the original data and should
// be treated as read-only.
func (c Chunk) Bytes() []byte {
	return c.data
}

// --- Container -------------------------------------------------------------

// Container is a parsed chunk container.
// It needs ongoing access to the container's byte data; the data is assumed
// immutable while the Container remains in use.
type Container struct {
	data     Segment
	chunks   map[Tag]Chunk
	order    []Tag
	warnings []Warning
}

// Parse parses a chunk container from a byte slice. An empty byte slice is
// a valid container without chunks.
//
// Parse fails with a ChunkError if a chunk header or payload is truncated,
// if a tag occurs more than once, or if the container is too large to be
// addressed with 32-bit offsets.
func Parse(data []byte) (*Container, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, critical(0, 0, "container size %d exceeds 32-bit offsets", len(data))
	}
	c := &Container{
		data:   Segment(data),
		chunks: make(map[Tag]Chunk),
	}
	pos := 0
	for pos < len(data) {
		if len(c.order) >= MaxChunkCount {
			return nil, critical(0, uint32(pos), "more than %d chunks", MaxChunkCount)
		}
		hdr, err := c.data.View(pos, HeaderSize)
		if err != nil {
			return nil, critical(0, uint32(pos), "truncated chunk header (%d bytes left)", len(data)-pos)
		}
		tag := Tag(binary.LittleEndian.Uint64(hdr[:8]))
		size := binary.LittleEndian.Uint32(hdr[8:12])
		start := pos + HeaderSize
		payload, err := c.data.View(start, int(size))
		if err != nil {
			return nil, critical(tag, uint32(start), "payload of %d bytes exceeds container size %d", size, len(data))
		}
		if _, dup := c.chunks[tag]; dup {
			return nil, critical(tag, uint32(pos), "duplicate chunk")
		}
		if size == 0 {
			c.warnings = append(c.warnings, Warning{Tag: tag, Issue: "empty chunk", Offset: uint32(pos)})
		}
		c.chunks[tag] = Chunk{Tag: tag, Offset: uint32(start), Size: size, data: payload}
		c.order = append(c.order, tag)
		tracer().Debugf("chunk %s at %d, size %d", tag, start, size)
		pos = start + int(size)
	}
	return c, nil
}

// Chunk returns the chunk for a given tag.
func (c *Container) Chunk(tag Tag) (Chunk, bool) {
	if c == nil {
		return Chunk{}, false
	}
	ch, ok := c.chunks[tag]
	return ch, ok
}

// Has reports whether the container holds a chunk with the given tag.
func (c *Container) Has(tag Tag) bool {
	_, ok := c.Chunk(tag)
	return ok
}

// Tags returns the tags of all chunks, in container order.
func (c *Container) Tags() []Tag {
	tags := make([]Tag, len(c.order))
	copy(tags, c.order)
	return tags
}

// Size returns the size of the container in bytes.
func (c *Container) Size() int {
	return len(c.data)
}

// Warnings returns all warnings encountered during parsing.
func (c *Container) Warnings() []Warning {
	if c.warnings == nil {
		return []Warning{}
	}
	return c.warnings
}

// --- Writer ----------------------------------------------------------------

// Writer assembles a chunk container.
type Writer struct {
	buf  bytes.Buffer
	seen map[Tag]bool
}

// NewWriter creates an empty container writer.
func NewWriter() *Writer {
	return &Writer{seen: make(map[Tag]bool)}
}

// Add appends a chunk. Tags must be unique within a container.
func (w *Writer) Add(tag Tag, payload []byte) error {
	if w.seen[tag] {
		return fmt.Errorf("chunk %s already written", tag)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("chunk %s: payload too large (%d bytes)", tag, len(payload))
	}
	w.seen[tag] = true
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[:8], uint64(tag))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(payload)))
	w.buf.Write(hdr[:])
	w.buf.Write(payload)
	return nil
}

// Bytes returns the container assembled so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
