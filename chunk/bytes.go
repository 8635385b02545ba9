package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Reading bytes from a container's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

// Segment is a segment of byte data within a container.
// We use it to navigate payloads without copying them.
type Segment []byte

// Size returns the size of the segment in bytes.
func (b Segment) Size() int {
	return len(b)
}

// Bytes returns the segment as a byte slice.
func (b Segment) Bytes() []byte {
	return b
}

// View returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b. A view of 0 bytes at the
// very end of b is legal.
func (b Segment) View(offset, n int) (Segment, error) {
	end, err := checkedAddInt(offset, n)
	if err != nil || offset < 0 || n < 0 || end > len(b) {
		return nil, errBufferBounds
	}
	return b[offset:end], nil
}

// U8 returns the byte at offset i.
func (b Segment) U8(i int) (uint8, error) {
	buf, err := b.View(i, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U16 returns the little-endian uint16 at offset i.
func (b Segment) U16(i int) (uint16, error) {
	buf, err := b.View(i, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// U32 returns the little-endian uint32 at offset i.
func (b Segment) U32(i int) (uint32, error) {
	buf, err := b.View(i, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// U64 returns the little-endian uint64 at offset i.
func (b Segment) U64(i int) (uint64, error) {
	buf, err := b.View(i, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedMulInt checks for overflow in multiplication of two non-negative integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a < 0 || b < 0 || a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// CheckedRange validates that [offset, offset+count*width) lies within a
// segment of the given size. It is used by payload parsers for tables of
// fixed-width records.
func CheckedRange(offset, count, width, size int) error {
	n, err := checkedMulInt(count, width)
	if err != nil {
		return err
	}
	end, err := checkedAddInt(offset, n)
	if err != nil {
		return err
	}
	if offset < 0 || end > size {
		return fmt.Errorf("range [%d:%d] exceeds size %d", offset, end, size)
	}
	return nil
}
