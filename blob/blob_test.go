package blob

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/matpack/variant"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// fakeSource is a Source with canned answers.
type fakeSource struct {
	reflection []byte
	shaders    []shader.Descriptor
	contents   map[shader.Descriptor][]byte
	reflErr    error
	listErr    error
}

func (s *fakeSource) Reflection() ([]byte, error) {
	return s.reflection, s.reflErr
}

func (s *fakeSource) Shaders() ([]shader.Descriptor, error) {
	return s.shaders, s.listErr
}

func (s *fakeSource) Content(d shader.Descriptor) ([]byte, error) {
	b, ok := s.contents[d]
	if !ok {
		return nil, materr.Errorf(materr.KindShaderExtraction, "fake", "no variant %s", d)
	}
	return b, nil
}

func (s *fakeSource) add(d shader.Descriptor, content []byte) {
	if s.contents == nil {
		s.contents = make(map[shader.Descriptor][]byte)
	}
	s.shaders = append(s.shaders, d)
	s.contents[d] = content
}

// recordingWriter keeps whatever is written to it.
type recordingWriter struct {
	bytes.Buffer
}

func TestSmallLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.blob")
	defer teardown()
	//
	src := &fakeSource{reflection: []byte(strings.Repeat("r", 40))}
	src.add(shader.Descriptor{Model: 1, Stage: 0, Flags: 0x03}, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	src.add(shader.Descriptor{Model: 1, Stage: 1, Flags: 0x03}, []byte{})
	var out bytes.Buffer
	l, err := Encode(&out, src)
	if err != nil {
		t.Fatalf("cannot encode: %v", err)
	}
	if l.HeaderSize != 72 {
		t.Errorf("expected header size 72, got %d", l.HeaderSize)
	}
	expected := []IndexEntry{
		{Key: 0x00010003, Offset: 72, Size: 8},
		{Key: 0x00010103, Offset: 80, Size: 0},
	}
	for i, e := range expected {
		if l.Entries[i] != e {
			t.Errorf("entry %d: expected %+v, got %+v", i, e, l.Entries[i])
		}
	}
	if out.Len() != 80 || l.TotalSize != 80 {
		t.Errorf("expected blob of 80 bytes, got %d (planned %d)", out.Len(), l.TotalSize)
	}
	b := out.Bytes()
	if ByteOrder.Uint32(b[0:]) != 40 || ByteOrder.Uint32(b[44:]) != 2 {
		t.Errorf("unexpected size fields: %d, %d", ByteOrder.Uint32(b[0:]), ByteOrder.Uint32(b[44:]))
	}
	// first index record starts right after the entry count
	if ByteOrder.Uint32(b[48:]) != 0x00010003 || ByteOrder.Uint32(b[52:]) != 72 || ByteOrder.Uint32(b[56:]) != 8 {
		t.Errorf("unexpected first index record % x", b[48:60])
	}
}

func TestRoundTripWithPackage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.blob")
	defer teardown()
	//
	pb := shader.NewPackageBuilder("roundtrip")
	contents := map[variant.Key][]byte{}
	for i := 0; i < 23; i++ {
		d := shader.Descriptor{Model: variant.ShadingModel(1 + i%2), Stage: variant.Stage(i % 3), Flags: variant.Flags(i)}
		c := bytes.Repeat([]byte{byte(i)}, i*7%13)
		pb.AddShader(shader.BackendOpenGL, d, c)
		contents[d.Key()] = c
	}
	pkg, err := pb.Build()
	if err != nil {
		t.Fatal(err)
	}
	r, err := shader.Parse(pkg, shader.BackendOpenGL)
	if err != nil {
		t.Fatal(err)
	}
	src := &readerSource{r: r, reflection: []byte(`{"name":"roundtrip"}`)}
	var out bytes.Buffer
	l, err := Encode(&out, src)
	if err != nil {
		t.Fatalf("cannot encode: %v", err)
	}
	decoded, err := Decode(out.Bytes())
	if err != nil {
		t.Fatalf("cannot decode: %v", err)
	}
	if err := decoded.Verify(); err != nil {
		t.Errorf("encoded blob violates layout invariants: %v", err)
	}
	if string(decoded.Reflection) != `{"name":"roundtrip"}` {
		t.Errorf("unexpected reflection %q", decoded.Reflection)
	}
	if len(decoded.Entries) != 23 || decoded.HeaderSize != l.HeaderSize {
		t.Fatalf("expected 23 entries after header of %d bytes, got %d after %d",
			l.HeaderSize, len(decoded.Entries), decoded.HeaderSize)
	}
	running := decoded.HeaderSize
	for i, e := range decoded.Entries {
		if e.Offset != running {
			t.Errorf("entry %d: offset %d, expected %d", i, e.Offset, running)
		}
		running += e.Size
		got, ok := decoded.Lookup(e.Key)
		if !ok || !bytes.Equal(got, contents[e.Key]) {
			t.Errorf("entry %d (%s): content mismatch", i, e.Key)
		}
	}
}

// readerSource adapts a shader.Reader with fixed reflection text.
type readerSource struct {
	r          *shader.Reader
	reflection []byte
}

func (s *readerSource) Reflection() ([]byte, error) {
	return s.reflection, nil
}

func (s *readerSource) Shaders() ([]shader.Descriptor, error) {
	return s.r.Shaders()
}

func (s *readerSource) Content(d shader.Descriptor) ([]byte, error) {
	return s.r.Content(d)
}

func TestZeroShaders(t *testing.T) {
	src := &fakeSource{reflection: []byte("{}")}
	var out bytes.Buffer
	l, err := Encode(&out, src)
	if err != nil {
		t.Fatalf("cannot encode: %v", err)
	}
	if l.HeaderSize != 10 || out.Len() != 10 {
		t.Errorf("expected blob of exactly header size 10, got %d (header %d)", out.Len(), l.HeaderSize)
	}
	if ByteOrder.Uint32(out.Bytes()[6:]) != 0 {
		t.Errorf("expected entry count 0")
	}
	b, err := Decode(out.Bytes())
	if err != nil || len(b.Entries) != 0 || b.Verify() != nil {
		t.Errorf("expected empty blob to decode and verify, got %v", err)
	}
}

func TestDuplicateKey(t *testing.T) {
	src := &fakeSource{reflection: []byte("{}")}
	d := shader.Descriptor{Model: 2, Stage: 1, Flags: 9}
	src.add(d, []byte{1})
	src.shaders = append(src.shaders, d)
	var out recordingWriter
	_, err := Encode(&out, src)
	if !materr.IsKind(err, materr.KindDuplicateVariantKey) {
		t.Fatalf("expected DuplicateVariantKeyError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing to be written on failure, got %d bytes", out.Len())
	}
}

func TestFailuresAbortBeforeWriting(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		src  *fakeSource
		kind materr.ErrorKind
	}{
		{"reflection", &fakeSource{reflErr: boom}, materr.KindMetadata},
		{"listing", &fakeSource{listErr: boom}, materr.KindMetadata},
		{"extraction", &fakeSource{shaders: []shader.Descriptor{{Model: 1}}}, materr.KindShaderExtraction},
	}
	for _, tt := range tests {
		var out recordingWriter
		_, err := Encode(&out, tt.src)
		if !materr.IsKind(err, tt.kind) {
			t.Errorf("%s: expected %s, got %v", tt.name, tt.kind, err)
		}
		if out.Len() != 0 {
			t.Errorf("%s: expected nothing to be written, got %d bytes", tt.name, out.Len())
		}
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > 16 {
		return 0, errors.New("disk full")
	}
	w.n += len(p)
	return len(p), nil
}

func TestWriteFailure(t *testing.T) {
	src := &fakeSource{reflection: []byte(strings.Repeat("x", 32))}
	_, err := Encode(&failingWriter{}, src)
	if !materr.IsKind(err, materr.KindSinkWrite) {
		t.Errorf("expected SinkWriteError, got %v", err)
	}
}

func TestHeaderSize(t *testing.T) {
	if n, err := HeaderSize(40, 2); err != nil || n != 72 {
		t.Errorf("HeaderSize(40, 2) = %d, %v; want 72", n, err)
	}
	if _, err := HeaderSize(MaxSize, 1); err == nil {
		t.Errorf("expected overflow error")
	}
	if _, err := HeaderSize(-1, 0); err == nil {
		t.Errorf("expected error for negative length")
	}
}

func TestDecodeCorrupt(t *testing.T) {
	src := &fakeSource{reflection: []byte("{}")}
	src.add(shader.Descriptor{Model: 1}, []byte("abcd"))
	var out bytes.Buffer
	if _, err := Encode(&out, src); err != nil {
		t.Fatal(err)
	}
	good := out.Bytes()
	cases := map[string][]byte{
		"empty":          {},
		"reflection":     {0xff, 0, 0, 0, '{'},
		"index":          good[:20],
		"content":        good[:len(good)-1],
		"offsetPastSize": func() []byte { b := bytes.Clone(good); ByteOrder.PutUint32(b[14:], 1000); return b }(),
	}
	for name, data := range cases {
		if _, err := Decode(data); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
	gap := append(bytes.Clone(good), 0)
	b, err := Decode(gap)
	if err != nil {
		t.Fatalf("trailing byte must not break decoding: %v", err)
	}
	if err := b.Verify(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected Verify to reject trailing garbage, got %v", err)
	}
}
