package shader

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/matpack/chunk"
	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/variant"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ReaderTestEnviron struct {
	suite.Suite
	pkg []byte
}

// listen for 'go test' command --> run test methods
func TestReaderFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "matpack.shader")
	defer teardown()
	suite.Run(t, new(ReaderTestEnviron))
}

// run once, before test suite methods
func (env *ReaderTestEnviron) SetupSuite() {
	tracing.Select("matpack.shader").SetTraceLevel(tracing.LevelError)
	var err error
	env.pkg, err = NewPackageBuilder("bricks").
		SetVersion(3).
		AddParameter(Parameter{Name: "baseColor", Type: ParamFloat4, Precision: PrecisionHigh}).
		AddParameter(Parameter{Name: "albedo", Type: ParamSampler2D}).
		AddParameter(Parameter{Name: "weights", Type: ParamFloat, ArraySize: 4}).
		AddShader(BackendOpenGL, Descriptor{Model: 1, Stage: variant.StageVertex, Flags: 0x03}, []byte("void main() {}\n")).
		AddShader(BackendOpenGL, Descriptor{Model: 1, Stage: variant.StageFragment, Flags: 0x03}, []byte{}).
		AddShader(BackendVulkan, Descriptor{Model: 2, Stage: variant.StageVertex}, []byte{0x03, 0x02, 0x23, 0x07}).
		Build()
	env.Require().NoError(err)
	tracing.Select("matpack.shader").SetTraceLevel(tracing.LevelInfo)
}

// --- Tests -----------------------------------------------------------------

func (env *ReaderTestEnviron) TestListShaders() {
	r, err := Parse(env.pkg, BackendOpenGL)
	env.Require().NoError(err)
	ds, err := r.Shaders()
	env.Require().NoError(err)
	env.Require().Len(ds, 2)
	env.Equal(variant.Key(0x00010003), ds[0].Key())
	env.Equal(variant.Key(0x00010103), ds[1].Key())
}

func (env *ReaderTestEnviron) TestFetchContent() {
	r, err := Parse(env.pkg, BackendOpenGL)
	env.Require().NoError(err)
	ds, _ := r.Shaders()
	b, err := r.Content(ds[0])
	env.Require().NoError(err)
	env.Equal("void main() {}\n", string(b))
	b, err = r.Content(ds[1])
	env.Require().NoError(err)
	env.Empty(b, "expected zero-length shader to be legal")
}

func (env *ReaderTestEnviron) TestBackendSelection() {
	r, err := Parse(env.pkg, BackendVulkan)
	env.Require().NoError(err)
	ds, err := r.Shaders()
	env.Require().NoError(err)
	env.Require().Len(ds, 1)
	b, err := r.Content(ds[0])
	env.Require().NoError(err)
	env.Equal([]byte{0x03, 0x02, 0x23, 0x07}, b)
}

func (env *ReaderTestEnviron) TestMissingBackend() {
	r, err := Parse(env.pkg, BackendMetal)
	env.Require().NoError(err)
	_, err = r.Shaders()
	env.True(materr.IsKind(err, materr.KindMetadata), "expected MetadataError, got %v", err)
}

func (env *ReaderTestEnviron) TestMissingVariant() {
	r, err := Parse(env.pkg, BackendOpenGL)
	env.Require().NoError(err)
	_, err = r.Content(Descriptor{Model: 7, Stage: variant.StageCompute})
	env.True(materr.IsKind(err, materr.KindShaderExtraction), "expected ShaderExtractionError, got %v", err)
}

func (env *ReaderTestEnviron) TestMaterialProperties() {
	r, err := Parse(env.pkg, BackendOpenGL)
	env.Require().NoError(err)
	name, err := r.Name()
	env.Require().NoError(err)
	env.Equal("bricks", name)
	v, ok := r.Version()
	env.True(ok)
	env.Equal(uint32(3), v)
	params, err := r.Parameters()
	env.Require().NoError(err)
	env.Require().Len(params, 3)
	env.Equal("baseColor", params[0].Name)
	env.Equal(PrecisionHigh, params[0].Precision)
	env.True(params[1].Type.IsSampler())
	env.Equal(uint16(4), params[2].ArraySize)
}

// --- Malformed packages ----------------------------------------------------

func TestParseMalformedPackage(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3}, BackendOpenGL)
	if !materr.IsKind(err, materr.KindPackageParse) {
		t.Fatalf("expected PackageParseError, got %v", err)
	}
}

func TestCorruptShaderTable(t *testing.T) {
	w := chunk.NewWriter()
	payload := binary.LittleEndian.AppendUint32(nil, 3) // three records claimed, none present
	_ = w.Add(TagGLSL, payload)
	r, err := Parse(w.Bytes(), BackendOpenGL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Shaders(); !materr.IsKind(err, materr.KindMetadata) {
		t.Errorf("expected MetadataError for truncated table, got %v", err)
	}
}

func TestShaderOutOfBounds(t *testing.T) {
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	payload = binary.LittleEndian.AppendUint16(payload, 1)
	payload = append(payload, 0, 0)
	payload = binary.LittleEndian.AppendUint32(payload, 0)
	payload = binary.LittleEndian.AppendUint32(payload, 100) // no data area at all
	w := chunk.NewWriter()
	_ = w.Add(TagGLSL, payload)
	r, err := Parse(w.Bytes(), BackendOpenGL)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := r.Shaders()
	if err != nil || len(ds) != 1 {
		t.Fatalf("expected one descriptor, got %v (%v)", ds, err)
	}
	if _, err := r.Content(ds[0]); !materr.IsKind(err, materr.KindShaderExtraction) {
		t.Errorf("expected ShaderExtractionError, got %v", err)
	}
	if size, err := r.Size(ds[0]); err != nil || size != 100 {
		t.Errorf("expected table size 100 without extraction, got %d (%v)", size, err)
	}
	if _, err := r.Size(Descriptor{Model: 9}); !materr.IsKind(err, materr.KindShaderExtraction) {
		t.Errorf("expected ShaderExtractionError for unknown variant, got %v", err)
	}
}

func TestMissingName(t *testing.T) {
	pkg, err := NewPackageBuilder("").EnsureBackend(BackendOpenGL).Build()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := Parse(pkg, BackendOpenGL)
	if _, err := r.Name(); !materr.IsKind(err, materr.KindMetadata) {
		t.Errorf("expected MetadataError for missing name, got %v", err)
	}
	ds, err := r.Shaders()
	if err != nil || len(ds) != 0 {
		t.Errorf("expected empty shader list, got %v (%v)", ds, err)
	}
}

func TestParseNames(t *testing.T) {
	for name, expected := range map[string]Backend{"GL": BackendOpenGL, "vk": BackendVulkan, "Metal": BackendMetal} {
		b, err := ParseBackend(name)
		if err != nil || b != expected {
			t.Errorf("ParseBackend(%q) = %s, %v", name, b, err)
		}
	}
	if _, err := ParseBackend("d3d"); err == nil {
		t.Errorf("expected error for unknown backend")
	}
	if p, err := ParseParamType("SAMPLER2D"); err != nil || p != ParamSampler2D {
		t.Errorf("ParseParamType(SAMPLER2D) = %s, %v", p, err)
	}
	if p, err := ParsePrecision(""); err != nil || p != PrecisionDefault {
		t.Errorf("ParsePrecision('') = %s, %v", p, err)
	}
}
