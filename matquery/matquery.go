/*
Package matquery produces reflection metadata for material packages.

The metadata is a JSON description of a material's name, version, parameters
and shader variants. The indexed blob format embeds it verbatim, so that
runtime loaders are able to bind parameters without parsing the package.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package matquery

import (
	json "github.com/goccy/go-json"
	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.query'
func tracer() tracing.Trace {
	return tracing.Select("matpack.query")
}

// MaterialInfo describes a material package for one backend.
type MaterialInfo struct {
	Name       string          `json:"name"`
	Version    uint32          `json:"version"`
	Backend    string          `json:"backend"`
	Parameters []ParameterInfo `json:"parameters"`
	Shaders    []ShaderInfo    `json:"shaders"`
}

// ParameterInfo describes a material parameter.
type ParameterInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Precision string `json:"precision"`
	ArraySize uint16 `json:"arraySize,omitempty"`
	Sampler   bool   `json:"sampler,omitempty"`
}

// ShaderInfo describes one shader variant.
type ShaderInfo struct {
	Key    string `json:"key"`
	Model  string `json:"shaderModel"`
	Stage  string `json:"pipelineStage"`
	Flags  uint8  `json:"variant"`
	Length int    `json:"size"`
}

// Describe collects the material information of r.
// It fails with a MetadataError if the package lacks a name, has a malformed
// parameter table, or if its shaders cannot be listed.
func Describe(r *shader.Reader) (*MaterialInfo, error) {
	const op = "matquery.Describe"
	name, err := r.Name()
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	info := &MaterialInfo{
		Name:       name,
		Backend:    r.Backend().String(),
		Parameters: []ParameterInfo{},
		Shaders:    []ShaderInfo{},
	}
	if v, ok := r.Version(); ok {
		info.Version = v
	}
	params, err := r.Parameters()
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	for _, p := range params {
		info.Parameters = append(info.Parameters, ParameterInfo{
			Name:      p.Name,
			Type:      p.Type.String(),
			Precision: p.Precision.String(),
			ArraySize: p.ArraySize,
			Sampler:   p.Type.IsSampler(),
		})
	}
	ds, err := r.Shaders()
	if err != nil {
		return nil, materr.New(materr.KindMetadata, op, err)
	}
	for _, d := range ds {
		size, err := r.Size(d)
		if err != nil {
			return nil, materr.New(materr.KindMetadata, op, err)
		}
		info.Shaders = append(info.Shaders, ShaderInfo{
			Key:    d.Key().String(),
			Model:  d.Model.String(),
			Stage:  d.Stage.String(),
			Flags:  uint8(d.Flags),
			Length: int(size),
		})
	}
	tracer().Debugf("material %q: %d parameters, %d shaders", name, len(info.Parameters), len(info.Shaders))
	return info, nil
}

// JSON returns the reflection metadata of r as compact JSON text.
func JSON(r *shader.Reader) ([]byte, error) {
	info, err := Describe(r)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(info)
	if err != nil {
		return nil, materr.New(materr.KindMetadata, "matquery.JSON", err)
	}
	return b, nil
}

// Parse decodes reflection metadata as produced by JSON, e.g. from an indexed
// blob.
func Parse(b []byte) (*MaterialInfo, error) {
	info := &MaterialInfo{}
	if err := json.Unmarshal(b, info); err != nil {
		return nil, materr.New(materr.KindMetadata, "matquery.Parse", err)
	}
	return info, nil
}
