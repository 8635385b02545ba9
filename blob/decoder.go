package blob

import (
	"errors"
	"fmt"

	"github.com/npillmayer/matpack/variant"
)

// ErrCorrupt is wrapped by all errors returned from Decode and Verify.
var ErrCorrupt = errors.New("corrupt blob")

// Blob is a decoded indexed blob. It keeps a reference to the encoded bytes.
type Blob struct {
	Reflection []byte
	Entries    []IndexEntry
	HeaderSize uint32
	data       []byte
}

// Decode parses an indexed blob. It checks that the header is complete and
// that every entry lies within data, but does not require contents to be
// contiguous (see Verify).
func Decode(data []byte) (*Blob, error) {
	if uint64(len(data)) > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceed 32-bit offsets", ErrCorrupt, len(data))
	}
	size := uint64(len(data))
	if size < FieldSize {
		return nil, fmt.Errorf("%w: missing reflection size", ErrCorrupt)
	}
	reflLen := uint64(ByteOrder.Uint32(data))
	pos := uint64(FieldSize) + reflLen
	if pos+FieldSize > size {
		return nil, fmt.Errorf("%w: reflection of %d bytes exceeds blob", ErrCorrupt, reflLen)
	}
	b := &Blob{
		Reflection: data[FieldSize:pos],
		data:       data,
	}
	count := uint64(ByteOrder.Uint32(data[pos:]))
	pos += FieldSize
	if count*EntrySize > size-pos {
		return nil, fmt.Errorf("%w: index table of %d entries exceeds blob", ErrCorrupt, count)
	}
	b.Entries = make([]IndexEntry, count)
	for i := range b.Entries {
		rec := data[pos : pos+EntrySize]
		e := IndexEntry{
			Key:    variant.Key(ByteOrder.Uint32(rec[0:])),
			Offset: ByteOrder.Uint32(rec[4:]),
			Size:   ByteOrder.Uint32(rec[8:]),
		}
		b.Entries[i] = e
		pos += EntrySize
	}
	b.HeaderSize = uint32(pos)
	for i, e := range b.Entries {
		if uint64(e.Offset) < pos || uint64(e.Offset)+uint64(e.Size) > size {
			return nil, fmt.Errorf("%w: entry %d (%s) [%d:+%d] outside of content region [%d:%d]",
				ErrCorrupt, i, e.Key, e.Offset, e.Size, pos, size)
		}
	}
	return b, nil
}

// Verify checks the stricter invariants of blobs produced by Encode: contents
// start right after the index table, follow each other without gaps in index
// order, end at the end of the blob, and no key occurs twice.
func (b *Blob) Verify() error {
	running := uint64(b.HeaderSize)
	seen := make(map[variant.Key]int, len(b.Entries))
	for i, e := range b.Entries {
		if j, dup := seen[e.Key]; dup {
			return fmt.Errorf("%w: entries %d and %d share key %s", ErrCorrupt, j, i, e.Key)
		}
		seen[e.Key] = i
		if uint64(e.Offset) != running {
			return fmt.Errorf("%w: entry %d (%s) at offset %d, expected %d", ErrCorrupt, i, e.Key, e.Offset, running)
		}
		running += uint64(e.Size)
	}
	if running != uint64(len(b.data)) {
		return fmt.Errorf("%w: contents end at %d, blob size is %d", ErrCorrupt, running, len(b.data))
	}
	return nil
}

// Size returns the size of the encoded blob.
func (b *Blob) Size() int {
	return len(b.data)
}

// Content returns the bytes of entry i. The result is a view into the blob.
func (b *Blob) Content(i int) []byte {
	if i < 0 || i >= len(b.Entries) {
		return nil
	}
	e := b.Entries[i]
	return b.data[e.Offset : e.Offset+e.Size]
}

// Lookup returns the content of the shader variant with the given key.
func (b *Blob) Lookup(key variant.Key) ([]byte, bool) {
	for i, e := range b.Entries {
		if e.Key == key {
			return b.Content(i), true
		}
	}
	return nil, false
}
