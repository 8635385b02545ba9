package shader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/npillmayer/matpack/chunk"
)

type builtShader struct {
	Descriptor
	content []byte
}

// PackageBuilder assembles a material package. It is the write side of Reader
// and is used by material authoring tools and tests.
type PackageBuilder struct {
	name     string
	version  uint32
	params   []Parameter
	shaders  map[Backend][]builtShader
	declared map[Backend]bool
}

// NewPackageBuilder creates a builder for a material with the given name.
// An empty name omits the name chunk.
func NewPackageBuilder(name string) *PackageBuilder {
	return &PackageBuilder{
		name:     name,
		version:  1,
		shaders:  make(map[Backend][]builtShader),
		declared: make(map[Backend]bool),
	}
}

// SetVersion sets the material version.
func (b *PackageBuilder) SetVersion(v uint32) *PackageBuilder {
	b.version = v
	return b
}

// AddParameter appends a material parameter.
func (b *PackageBuilder) AddParameter(p Parameter) *PackageBuilder {
	b.params = append(b.params, p)
	return b
}

// EnsureBackend makes the package carry a shader chunk for backend, even if
// no shaders are added for it.
func (b *PackageBuilder) EnsureBackend(backend Backend) *PackageBuilder {
	b.declared[backend] = true
	return b
}

// AddShader appends a shader for a backend. Shaders keep the order in which
// they were added. Duplicates are not rejected.
func (b *PackageBuilder) AddShader(backend Backend, d Descriptor, content []byte) *PackageBuilder {
	b.declared[backend] = true
	b.shaders[backend] = append(b.shaders[backend], builtShader{Descriptor: d, content: content})
	return b
}

// Build returns the encoded package.
func (b *PackageBuilder) Build() ([]byte, error) {
	w := chunk.NewWriter()
	if b.name != "" {
		if err := w.Add(TagName, []byte(b.name)); err != nil {
			return nil, err
		}
	}
	if err := w.Add(TagVersion, binary.LittleEndian.AppendUint32(nil, b.version)); err != nil {
		return nil, err
	}
	if len(b.params) > 0 {
		payload, err := encodeParameters(b.params)
		if err != nil {
			return nil, err
		}
		if err := w.Add(TagParams, payload); err != nil {
			return nil, err
		}
	}
	for _, backend := range Backends {
		if !b.declared[backend] {
			continue
		}
		payload, err := encodeShaderTable(b.shaders[backend])
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", backend, err)
		}
		if err := w.Add(backend.ShaderChunk(), payload); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func encodeParameters(params []Parameter) ([]byte, error) {
	buf := binary.LittleEndian.AppendUint32(nil, uint32(len(params)))
	for _, p := range params {
		if len(p.Name) > math.MaxUint16 {
			return nil, fmt.Errorf("parameter name too long: %d bytes", len(p.Name))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Name)))
		buf = append(buf, p.Name...)
		buf = append(buf, uint8(p.Type), uint8(p.Precision))
		buf = binary.LittleEndian.AppendUint16(buf, p.ArraySize)
	}
	return buf, nil
}

func encodeShaderTable(shaders []builtShader) ([]byte, error) {
	if len(shaders) > MaxShaderCount {
		return nil, fmt.Errorf("too many shaders: %d", len(shaders))
	}
	buf := binary.LittleEndian.AppendUint32(nil, uint32(len(shaders)))
	var offset uint64
	for _, s := range shaders {
		size := uint64(len(s.content))
		if offset+size > math.MaxUint32 {
			return nil, fmt.Errorf("shader data exceeds 32-bit offsets")
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s.Model))
		buf = append(buf, uint8(s.Stage), uint8(s.Flags))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(offset))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
		offset += size
	}
	for _, s := range shaders {
		buf = append(buf, s.content...)
	}
	return buf, nil
}
