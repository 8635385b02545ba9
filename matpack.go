package matpack

import (
	"bytes"

	"github.com/npillmayer/matpack/blob"
	"github.com/npillmayer/matpack/compiler"
	"github.com/npillmayer/matpack/header"
	"github.com/npillmayer/matpack/matquery"
	"github.com/npillmayer/matpack/shader"
)

// FromBinary parses a material package and returns a reader for the shaders
// of the OpenGL backend.
//
// The input must not change while the reader is in use.
func FromBinary(pkg []byte) (*shader.Reader, error) {
	return shader.Parse(pkg, shader.BackendOpenGL)
}

// MaterialName extracts name and version of a material.
//
// Returned values are empty if the package lacks the respective chunks.
func MaterialName(r *shader.Reader) (name string, version uint32) {
	name, _ = r.Name()
	version, _ = r.Version()
	return
}

// BlobFor encodes a material package as an indexed blob for a backend.
func BlobFor(pkg []byte, backend shader.Backend) ([]byte, error) {
	var buf bytes.Buffer
	err := compiler.Compile(pkg, compiler.Config{
		Mode:    compiler.ModeBlob,
		Backend: backend,
		Output:  compiler.WriterOutput{W: &buf},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HeaderFor writes a material package as a listing of byte literals,
// without banner.
func HeaderFor(pkg []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := header.Encode(&buf, pkg, header.DefaultOptions()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reflect decodes an indexed blob and returns its reflection metadata.
func Reflect(data []byte) (*matquery.MaterialInfo, error) {
	b, err := blob.Decode(data)
	if err != nil {
		return nil, err
	}
	return matquery.Parse(b.Reflection)
}
