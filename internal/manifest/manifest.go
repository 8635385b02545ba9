/*
Package manifest builds material packages from YAML material manifests.

A manifest names the material, its parameters and its WGSL shader sources:

	name: bricks
	version: 3
	parameters:
	  - name: baseColor
	    type: float4
	    precision: medium
	shaders:
	  - source: bricks.wgsl
	    model: desktop
	    variants: [0, 1, 3]
	    backends: [opengl, vulkan, metal]

Every entry point of a WGSL source is translated with naga for each listed
backend (GLSL for OpenGL, SPIR-V for Vulkan, MSL for Metal) and packaged once
per variant flag byte. The pipeline stage of a shader is the stage of its
entry point.
*/
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/matpack/variant"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"
)

// tracer writes to trace with key 'matpack.manifest'
func tracer() tracing.Trace {
	return tracing.Select("matpack.manifest")
}

// Manifest is the YAML description of a material.
type Manifest struct {
	Name       string          `yaml:"name"`
	Version    uint32          `yaml:"version"`
	Parameters []ParameterSpec `yaml:"parameters"`
	Shaders    []ShaderSpec    `yaml:"shaders"`
	dir        string          // base directory for relative source paths
}

// ParameterSpec declares a material parameter.
type ParameterSpec struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Precision string `yaml:"precision"`
	ArraySize uint16 `yaml:"arraySize"`
}

// ShaderSpec declares a WGSL source and the variants built from it.
// Code may hold inline WGSL instead of a Source path.
type ShaderSpec struct {
	Source   string   `yaml:"source"`
	Code     string   `yaml:"code"`
	Model    string   `yaml:"model"`
	Variants []uint8  `yaml:"variants"`
	Backends []string `yaml:"backends"`
}

// Parse reads a manifest. Unknown fields are rejected. Relative shader
// sources are resolved against the working directory.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, materr.Errorf(materr.KindConfig, "manifest.Parse", "empty manifest")
		}
		return nil, materr.New(materr.KindConfig, "manifest.Parse", err)
	}
	return m, nil
}

// Load reads a manifest file. Relative shader sources are resolved against
// the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, materr.New(materr.KindConfig, "manifest.Load", err)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Build translates all shaders and returns the encoded material package.
func (m *Manifest) Build() ([]byte, error) {
	const op = "manifest.Build"
	if m.Name == "" {
		return nil, materr.Errorf(materr.KindConfig, op, "manifest has no material name")
	}
	b := shader.NewPackageBuilder(m.Name).SetVersion(m.Version)
	for _, ps := range m.Parameters {
		p, err := ps.parameter()
		if err != nil {
			return nil, materr.New(materr.KindConfig, op, err)
		}
		b.AddParameter(p)
	}
	origins := make(map[shader.Backend]map[variant.Key]string)
	for i, ss := range m.Shaders {
		if err := m.addShaders(b, ss, i, origins); err != nil {
			return nil, materr.Errorf(materr.KindConfig, op, "shader #%d: %v", i, err)
		}
	}
	return b.Build()
}

func (ps ParameterSpec) parameter() (shader.Parameter, error) {
	if ps.Name == "" {
		return shader.Parameter{}, errors.New("parameter without name")
	}
	t, err := shader.ParseParamType(ps.Type)
	if err != nil {
		return shader.Parameter{}, fmt.Errorf("parameter %s: %w", ps.Name, err)
	}
	prec, err := shader.ParsePrecision(ps.Precision)
	if err != nil {
		return shader.Parameter{}, fmt.Errorf("parameter %s: %w", ps.Name, err)
	}
	return shader.Parameter{Name: ps.Name, Type: t, Precision: prec, ArraySize: ps.ArraySize}, nil
}

// addShaders translates one shader source. origins records, per backend, which
// shader entry and entry point produced each variant key; a key produced twice
// is an error, as no blob could be built from the package.
func (m *Manifest) addShaders(b *shader.PackageBuilder, ss ShaderSpec, index int,
	origins map[shader.Backend]map[variant.Key]string) error {
	model, err := ParseShadingModel(ss.Model)
	if err != nil {
		return err
	}
	src, err := m.source(ss)
	if err != nil {
		return err
	}
	module, err := Translate(src)
	if err != nil {
		return err
	}
	if len(module.EntryPoints) == 0 {
		return errors.New("shader source has no entry points")
	}
	variants := ss.Variants
	if len(variants) == 0 {
		variants = []uint8{0}
	}
	backends := ss.Backends
	if len(backends) == 0 {
		backends = []string{shader.BackendOpenGL.String()}
	}
	for _, name := range backends {
		backend, err := shader.ParseBackend(name)
		if err != nil {
			return err
		}
		var spv []byte // one SPIR-V module serves all entry points
		for _, ep := range module.EntryPoints {
			code := spv
			if code == nil {
				if code, err = Generate(module, ep, backend); err != nil {
					return fmt.Errorf("entry point %s: %w", ep.Name, err)
				}
			}
			if backend == shader.BackendVulkan {
				spv = code
			}
			stage, err := StageOf(ep.Stage)
			if err != nil {
				return fmt.Errorf("entry point %s: %w", ep.Name, err)
			}
			if origins[backend] == nil {
				origins[backend] = make(map[variant.Key]string)
			}
			origin := fmt.Sprintf("shader #%d entry point %s", index, ep.Name)
			for _, flags := range variants {
				d := shader.Descriptor{Model: model, Stage: stage, Flags: variant.Flags(flags)}
				if prev, dup := origins[backend][d.Key()]; dup {
					return fmt.Errorf("%s shader %s produced by both %s and %s", backend, d, prev, origin)
				}
				origins[backend][d.Key()] = origin
				tracer().Debugf("adding %s shader %s from entry point %s", backend, d, ep.Name)
				b.AddShader(backend, d, code)
			}
		}
	}
	return nil
}

func (m *Manifest) source(ss ShaderSpec) (string, error) {
	if ss.Code != "" {
		if ss.Source != "" {
			return "", errors.New("shader has both source and inline code")
		}
		return ss.Code, nil
	}
	if ss.Source == "" {
		return "", errors.New("shader has neither source nor inline code")
	}
	path := ss.Source
	if !filepath.IsAbs(path) && m.dir != "" {
		path = filepath.Join(m.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseShadingModel accepts "mobile", "desktop" or a decimal model number.
// The empty string is the mobile model.
func ParseShadingModel(s string) (variant.ShadingModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mobile":
		return variant.ModelMobile, nil
	case "desktop":
		return variant.ModelDesktop, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown shading model: %q", s)
	}
	return variant.ShadingModel(n), nil
}

// --- Translation -----------------------------------------------------------

// Translate parses WGSL source and lowers it to naga's IR.
func Translate(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, err
	}
	return naga.LowerWithSource(ast, src)
}

// Generate emits the code for one entry point in a backend's shading
// language. SPIR-V modules carry all entry points of the source.
func Generate(module *ir.Module, ep ir.EntryPoint, backend shader.Backend) ([]byte, error) {
	switch backend {
	case shader.BackendOpenGL:
		opts := glsl.DefaultOptions()
		opts.EntryPoint = ep.Name
		code, _, err := glsl.Compile(module, opts)
		return []byte(code), err
	case shader.BackendVulkan:
		return naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	case shader.BackendMetal:
		code, _, err := msl.CompileWithPipeline(module, msl.DefaultOptions(), msl.PipelineOptions{
			EntryPoint: &msl.EntryPointSelector{Stage: ep.Stage, Name: ep.Name},
		})
		return []byte(code), err
	}
	return nil, fmt.Errorf("no code generator for backend %s", backend)
}

// StageOf maps a naga shader stage to a pipeline stage.
func StageOf(s ir.ShaderStage) (variant.Stage, error) {
	switch s {
	case ir.StageVertex:
		return variant.StageVertex, nil
	case ir.StageFragment:
		return variant.StageFragment, nil
	case ir.StageCompute:
		return variant.StageCompute, nil
	}
	return 0, fmt.Errorf("unsupported shader stage %d", s)
}
