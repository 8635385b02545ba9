package shader

import (
	"fmt"
	"strings"

	"github.com/npillmayer/matpack/chunk"
	"github.com/npillmayer/matpack/variant"
)

// Chunk tags of a material package.
var (
	TagName    = chunk.T("MAT_NAME")
	TagVersion = chunk.T("MAT_VERS")
	TagParams  = chunk.T("MAT_PARM")
	TagGLSL    = chunk.T("MAT_GLSL")
	TagSPIRV   = chunk.T("MAT_SPIR")
	TagMetal   = chunk.T("MAT_METL")
)

// RecordSize is the byte size of a shader table record.
const RecordSize = 2 + 1 + 1 + 4 + 4

// --- Backend ---------------------------------------------------------------

// Backend selects the graphics API whose shaders are extracted.
type Backend int

// Supported backends. The zero value is OpenGL.
const (
	BackendOpenGL Backend = iota
	BackendVulkan
	BackendMetal
)

// Backends lists all backends in package order.
var Backends = []Backend{BackendOpenGL, BackendVulkan, BackendMetal}

func (b Backend) String() string {
	switch b {
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	case BackendMetal:
		return "metal"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// ShaderChunk returns the tag of the chunk holding b's shaders.
func (b Backend) ShaderChunk() chunk.Tag {
	switch b {
	case BackendVulkan:
		return TagSPIRV
	case BackendMetal:
		return TagMetal
	}
	return TagGLSL
}

// ParseBackend returns the backend for a name like "opengl", "gl", "vulkan",
// "vk" or "metal". Case is ignored.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "opengl", "gl", "glsl":
		return BackendOpenGL, nil
	case "vulkan", "vk", "spirv":
		return BackendVulkan, nil
	case "metal", "msl":
		return BackendMetal, nil
	}
	return 0, fmt.Errorf("unknown backend: %q", name)
}

// --- Descriptor ------------------------------------------------------------

// Descriptor identifies one shader variant within a package.
type Descriptor struct {
	Model variant.ShadingModel
	Stage variant.Stage
	Flags variant.Flags
}

// Key returns the variant key of d.
func (d Descriptor) Key() variant.Key {
	return variant.Encode(d.Model, d.Stage, d.Flags)
}

func (d Descriptor) String() string {
	return d.Key().Describe()
}

// --- Parameters ------------------------------------------------------------

// ParamType is the type of a material parameter.
type ParamType uint8

// Parameter types.
const (
	ParamBool ParamType = iota
	ParamFloat
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamInt
	ParamInt2
	ParamInt3
	ParamInt4
	ParamMat3
	ParamMat4
	ParamSampler2D
	ParamSamplerCubemap
	ParamSamplerExternal
)

var paramTypeNames = []string{
	"bool", "float", "float2", "float3", "float4",
	"int", "int2", "int3", "int4", "mat3", "mat4",
	"sampler2d", "samplerCubemap", "samplerExternal",
}

func (t ParamType) String() string {
	if int(t) < len(paramTypeNames) {
		return paramTypeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// IsSampler reports whether t is one of the sampler types.
func (t ParamType) IsSampler() bool {
	return t >= ParamSampler2D && t <= ParamSamplerExternal
}

// ParseParamType returns the parameter type for a name as produced by String.
func ParseParamType(name string) (ParamType, error) {
	for i, n := range paramTypeNames {
		if strings.EqualFold(n, name) {
			return ParamType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter type: %q", name)
}

// Precision is the declared precision of a parameter.
type Precision uint8

// Precisions.
const (
	PrecisionDefault Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

var precisionNames = []string{"default", "low", "medium", "high"}

func (p Precision) String() string {
	if int(p) < len(precisionNames) {
		return precisionNames[p]
	}
	return fmt.Sprintf("precision(%d)", uint8(p))
}

// ParsePrecision returns the precision for a name as produced by String.
// The empty string is the default precision.
func ParsePrecision(name string) (Precision, error) {
	if name == "" {
		return PrecisionDefault, nil
	}
	for i, n := range precisionNames {
		if strings.EqualFold(n, name) {
			return Precision(i), nil
		}
	}
	return 0, fmt.Errorf("unknown precision: %q", name)
}

// Parameter is a user-visible material parameter.
type Parameter struct {
	Name      string
	Type      ParamType
	Precision Precision
	ArraySize uint16 // 0 for scalars
}
