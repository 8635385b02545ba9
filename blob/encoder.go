package blob

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/matpack/variant"
)

// ByteOrder is the byte order of every integer field of a blob.
var ByteOrder = binary.LittleEndian

// Field sizes of the blob format.
const (
	FieldSize = 4              // size of reflectionSize and entryCount
	EntrySize = 3 * FieldSize  // size of an IndexEntry record
	MaxSize   = math.MaxUint32 // blobs are addressed with 32-bit offsets
)

// IndexEntry locates the content of one shader variant within a blob.
type IndexEntry struct {
	Key    variant.Key
	Offset uint32 // absolute offset from the start of the blob
	Size   uint32
}

// Source provides what goes into a blob. *compiler.PackageSource adapts a
// material package to it.
type Source interface {
	Reflection() ([]byte, error)
	Shaders() ([]shader.Descriptor, error)
	Content(shader.Descriptor) ([]byte, error)
}

// HeaderSize returns the size of everything preceding the content region:
// the two count fields, the reflection text and the index table.
func HeaderSize(reflectionLen, entryCount int) (uint32, error) {
	if reflectionLen < 0 || entryCount < 0 {
		return 0, fmt.Errorf("negative blob dimensions: %d, %d", reflectionLen, entryCount)
	}
	table, err := checkedMulUint64(uint64(entryCount), EntrySize)
	if err != nil {
		return 0, err
	}
	size := uint64(2*FieldSize) + uint64(reflectionLen) + table
	if size > MaxSize {
		return 0, fmt.Errorf("blob header of %d bytes exceeds 32-bit offsets", size)
	}
	return uint32(size), nil
}

// Layout is a fully planned blob. All offsets are final.
type Layout struct {
	Reflection []byte
	Entries    []IndexEntry
	HeaderSize uint32 // offset of the content region
	TotalSize  uint32 // size of the complete blob
	contents   [][]byte
}

// Plan fetches reflection text, shader list and shader contents from src and
// computes the index table.
//
// Plan fails with a MetadataError if reflection or listing fail, with a
// ShaderExtractionError if a shader's content cannot be fetched or the blob
// would exceed 32-bit offsets, and with a DuplicateVariantKeyError if two
// descriptors encode to the same key.
func Plan(src Source) (*Layout, error) {
	const op = "blob.Plan"
	refl, err := src.Reflection()
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	ds, err := src.Shaders()
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	hdr, err := HeaderSize(len(refl), len(ds))
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	tracer().Debugf("blob header size = %d (reflection %d bytes, %d entries)", hdr, len(refl), len(ds))
	l := &Layout{
		Reflection: refl,
		Entries:    make([]IndexEntry, 0, len(ds)),
		HeaderSize: hdr,
		contents:   make([][]byte, 0, len(ds)),
	}
	seen := make(map[variant.Key]shader.Descriptor, len(ds))
	running := hdr
	for _, d := range ds {
		key := d.Key()
		if prev, dup := seen[key]; dup {
			return nil, materr.Errorf(materr.KindDuplicateVariantKey, op,
				"descriptors %v and %v both encode to key %s", prev, d, key)
		}
		seen[key] = d
		content, err := src.Content(d)
		if err != nil {
			return nil, materr.New(materr.KindShaderExtraction, op, err)
		}
		if uint64(len(content)) > MaxSize-uint64(running) {
			return nil, materr.Errorf(materr.KindShaderExtraction, op,
				"variant %s: blob exceeds 32-bit offsets", d)
		}
		entry := IndexEntry{Key: key, Offset: running, Size: uint32(len(content))}
		tracer().Debugf("entry %s @ %d, %d bytes", key, entry.Offset, entry.Size)
		l.Entries = append(l.Entries, entry)
		l.contents = append(l.contents, content)
		running += entry.Size
	}
	l.TotalSize = running
	return l, nil
}

// WriteTo emits the blob to w. It implements io.WriterTo.
//
// Before each shader's content is written, the number of bytes emitted so far
// is checked against the entry's offset.
func (l *Layout) WriteTo(w io.Writer) (int64, error) {
	fw := &fieldWriter{w: w}
	fw.u32(uint32(len(l.Reflection)))
	fw.bytes(l.Reflection)
	fw.u32(uint32(len(l.Entries)))
	for _, e := range l.Entries {
		fw.u32(uint32(e.Key))
		fw.u32(e.Offset)
		fw.u32(e.Size)
	}
	for i, e := range l.Entries {
		if fw.err == nil && fw.n != int64(e.Offset) {
			fw.err = fmt.Errorf("internal inconsistency: entry %d (%s) at %d, but writer is at %d",
				i, e.Key, e.Offset, fw.n)
		}
		fw.bytes(l.contents[i])
	}
	if fw.err == nil && fw.n != int64(l.TotalSize) {
		fw.err = fmt.Errorf("internal inconsistency: wrote %d bytes, planned %d", fw.n, l.TotalSize)
	}
	return fw.n, fw.err
}

// Encode plans a blob from src and writes it to w.
// Write failures are reported as SinkWriteError. If planning fails, nothing
// is written to w.
func Encode(w io.Writer, src Source) (*Layout, error) {
	l, err := Plan(src)
	if err != nil {
		tracer().Errorf("blob encoding aborted: %v", err)
		return nil, err
	}
	if _, err := l.WriteTo(w); err != nil {
		return nil, materr.New(materr.KindSinkWrite, "blob.Encode", err)
	}
	tracer().Infof("wrote blob of %d bytes with %d shaders", l.TotalSize, len(l.Entries))
	return l, nil
}

// --- Helpers ---------------------------------------------------------------

// fieldWriter writes blob fields and keeps the first error.
type fieldWriter struct {
	w   io.Writer
	n   int64
	err error
	buf [FieldSize]byte
}

func (fw *fieldWriter) u32(v uint32) {
	ByteOrder.PutUint32(fw.buf[:], v)
	fw.bytes(fw.buf[:])
}

func (fw *fieldWriter) bytes(b []byte) {
	if fw.err != nil || len(b) == 0 {
		return
	}
	n, err := fw.w.Write(b)
	fw.n += int64(n)
	fw.err = err
}

// checkedMulUint64 checks for overflow in multiplication of two uint64 values
func checkedMulUint64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}
