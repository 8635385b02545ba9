package header

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 18, 9, 41, 7, 0, time.UTC)
}

func TestRoundTripAllLengths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.header")
	defer teardown()
	//
	for _, n := range []int{0, 1, 19, 20, 21, 40, 57, 256} {
		pkg := make([]byte, n)
		for i := range pkg {
			pkg[i] = byte(i * 37)
		}
		var out bytes.Buffer
		require.NoError(t, Encode(&out, pkg, DefaultOptions()))
		back, err := Decode(out.Bytes())
		require.NoError(t, err)
		assert.Equal(t, pkg, back, "length %d", n)
		lines := strings.Count(out.String(), "\n")
		assert.Equal(t, (n+19)/20, lines, "length %d: line count", n)
	}
}

func TestLineLayout(t *testing.T) {
	pkg := make([]byte, 21)
	pkg[0], pkg[20] = 0xab, 0x0f
	var out bytes.Buffer
	require.NoError(t, Encode(&out, pkg, DefaultOptions()))
	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 3) // two lines plus empty remainder after final newline
	assert.True(t, strings.HasPrefix(lines[0], "0xab, 0x00, "))
	assert.Equal(t, 20, strings.Count(lines[0], "0x"))
	assert.Equal(t, "0x0f, ", lines[1])
	assert.Equal(t, "", lines[2])
}

func TestBanner(t *testing.T) {
	opts := DefaultOptions()
	opts.Debug = true
	opts.Invocation = "matc compile -m header bricks.pkg"
	opts.Now = fixedClock
	var out bytes.Buffer
	require.NoError(t, Encode(&out, []byte{1, 2}, opts))
	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "// This file was generated with: matc compile -m header bricks.pkg", lines[0])
	assert.Equal(t, "// Created: 2026-10-18 at 09:41:07", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "0x01, 0x02, ", lines[3])
	back, err := Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, back)
}

func TestBannerWithLineBreaks(t *testing.T) {
	opts := DefaultOptions()
	opts.Debug = true
	opts.Invocation = "matc compile -o \"a\nb.h\" x.pkg\r"
	opts.Now = fixedClock
	var out bytes.Buffer
	require.NoError(t, Encode(&out, []byte{7}, opts))
	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `// This file was generated with: matc compile -o "a\nb.h" x.pkg\r`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "// Created: "))
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "0x07, ", lines[3])
	back, err := Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, back)
}

func TestNoBanner(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, []byte{0xff}, Options{}))
	assert.Equal(t, "0xff, \n", out.String())
}

func TestOptions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Encode(&out, []byte{0xab, 0xcd, 0xef}, Options{PerLine: 2, Upper: true}))
	assert.Equal(t, "0xAB, 0xCD, \n0xEF, \n", out.String())
	back, err := Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xcd, 0xef}, back)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("0x01, zz\n"))
	assert.Error(t, err)
	_, err = Decode([]byte("0x100,\n"))
	assert.Error(t, err)
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestWriteFailure(t *testing.T) {
	err := Encode(brokenWriter{}, []byte{1, 2, 3}, DefaultOptions())
	assert.True(t, materr.IsKind(err, materr.KindSinkWrite), "expected SinkWriteError, got %v", err)
}
