package shader

import (
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/matpack/chunk"
	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/variant"
)

// MaxShaderCount limits the number of records in a shader table.
const MaxShaderCount = 1 << 16

type record struct {
	Descriptor
	offset, size uint32
}

// Reader gives access to the shaders of one backend in a material package.
type Reader struct {
	container *chunk.Container
	backend   Backend
	records   []record
	data      chunk.Segment // data area of the shader chunk
	tableErr  error
	loaded    bool
}

// Parse parses a material package and binds the resulting Reader to a backend.
// It fails with a PackageParseError if the package is not a well-formed chunk
// container. Shader chunks are not inspected until Shaders or Content is called.
func Parse(pkg []byte, backend Backend) (*Reader, error) {
	c, err := chunk.Parse(pkg)
	if err != nil {
		return nil, materr.New(materr.KindPackageParse, "shader.Parse", err)
	}
	tracer().Debugf("material package with %d chunks, backend %s", len(c.Tags()), backend)
	return &Reader{container: c, backend: backend}, nil
}

// Backend returns the backend this reader extracts shaders for.
func (r *Reader) Backend() Backend {
	return r.backend
}

// Container returns the underlying chunk container.
func (r *Reader) Container() *chunk.Container {
	return r.container
}

// Shaders lists the descriptors of all shaders in package order.
// It fails with a MetadataError if the backend's shader chunk is missing or
// its table is malformed.
func (r *Reader) Shaders() ([]Descriptor, error) {
	if err := r.loadTable(); err != nil {
		return nil, err
	}
	ds := make([]Descriptor, len(r.records))
	for i, rec := range r.records {
		ds[i] = rec.Descriptor
	}
	return ds, nil
}

// Content returns the bytes of the shader described by d. The result is a
// view into the package and must not be modified.
// It fails with a ShaderExtractionError if no such shader exists or if its
// bytes lie outside the shader chunk.
func (r *Reader) Content(d Descriptor) ([]byte, error) {
	if err := r.loadTable(); err != nil {
		return nil, materr.New(materr.KindShaderExtraction, "shader.Content", err)
	}
	for _, rec := range r.records {
		if rec.Descriptor != d {
			continue
		}
		b, err := r.data.View(int(rec.offset), int(rec.size))
		if err != nil {
			return nil, materr.Errorf(materr.KindShaderExtraction, "shader.Content",
				"variant %s: bytes [%d:+%d] outside of %s data area of size %d",
				d, rec.offset, rec.size, r.backend.ShaderChunk(), len(r.data))
		}
		return b, nil
	}
	return nil, materr.Errorf(materr.KindShaderExtraction, "shader.Content",
		"variant %s not present for backend %s", d, r.backend)
}

// Size returns the size of the shader described by d, as stated by the shader
// table. It does not check that the shader's bytes are within the package;
// Content does. Size fails with a MetadataError if the table cannot be read
// and with a ShaderExtractionError if no such shader exists.
func (r *Reader) Size(d Descriptor) (uint32, error) {
	if err := r.loadTable(); err != nil {
		return 0, err
	}
	for _, rec := range r.records {
		if rec.Descriptor == d {
			return rec.size, nil
		}
	}
	return 0, materr.Errorf(materr.KindShaderExtraction, "shader.Size",
		"variant %s not present for backend %s", d, r.backend)
}

func (r *Reader) loadTable() error {
	if r.loaded {
		return r.tableErr
	}
	r.loaded = true
	r.records, r.data, r.tableErr = parseShaderTable(r.container, r.backend.ShaderChunk())
	if r.tableErr == nil {
		tracer().Debugf("%s: %d shaders, %d bytes of shader data",
			r.backend.ShaderChunk(), len(r.records), len(r.data))
	}
	return r.tableErr
}

func parseShaderTable(c *chunk.Container, tag chunk.Tag) ([]record, chunk.Segment, error) {
	const op = "shader.Shaders"
	ch, ok := c.Chunk(tag)
	if !ok {
		return nil, nil, materr.Errorf(materr.KindMetadata, op, "package lacks chunk %s", tag)
	}
	payload := ch.Payload()
	count, err := payload.U32(0)
	if err != nil {
		return nil, nil, materr.Errorf(materr.KindMetadata, op, "chunk %s: missing shader count", tag)
	}
	if count > MaxShaderCount {
		return nil, nil, materr.Errorf(materr.KindMetadata, op, "chunk %s: shader count %d too large", tag, count)
	}
	if err := chunk.CheckedRange(4, int(count), RecordSize, payload.Size()); err != nil {
		return nil, nil, materr.Errorf(materr.KindMetadata, op, "chunk %s: shader table: %v", tag, err)
	}
	records := make([]record, count)
	for i := range records {
		b, _ := payload.View(4+i*RecordSize, RecordSize)
		model, _ := b.U16(0)
		stage, _ := b.U8(2)
		flags, _ := b.U8(3)
		offset, _ := b.U32(4)
		size, _ := b.U32(8)
		records[i] = record{
			Descriptor: Descriptor{Model: variant.ShadingModel(model), Stage: variant.Stage(stage), Flags: variant.Flags(flags)},
			offset:     offset,
			size:       size,
		}
	}
	data, _ := payload.View(4+int(count)*RecordSize, payload.Size()-4-int(count)*RecordSize)
	return records, data, nil
}

// --- Material properties ---------------------------------------------------

// Name returns the material's name.
// It fails with a MetadataError if the package has no name chunk or the name
// is not valid UTF-8.
func (r *Reader) Name() (string, error) {
	ch, ok := r.container.Chunk(TagName)
	if !ok {
		return "", materr.Errorf(materr.KindMetadata, "shader.Name", "package lacks chunk %s", TagName)
	}
	if !utf8.Valid(ch.Bytes()) {
		return "", materr.Errorf(materr.KindMetadata, "shader.Name", "material name is not valid UTF-8")
	}
	return string(ch.Bytes()), nil
}

// Version returns the material's version, if the package states one.
func (r *Reader) Version() (uint32, bool) {
	ch, ok := r.container.Chunk(TagVersion)
	if !ok {
		return 0, false
	}
	v, err := ch.Payload().U32(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Parameters returns the material's parameters. A package without a parameter
// chunk has no parameters. A malformed parameter table is a MetadataError.
func (r *Reader) Parameters() ([]Parameter, error) {
	ch, ok := r.container.Chunk(TagParams)
	if !ok {
		return []Parameter{}, nil
	}
	params, err := parseParameters(ch.Payload())
	if err != nil {
		return nil, materr.Errorf(materr.KindMetadata, "shader.Parameters", "chunk %s: %v", TagParams, err)
	}
	return params, nil
}

func parseParameters(b chunk.Segment) ([]Parameter, error) {
	count, err := b.U32(0)
	if err != nil {
		return nil, fmt.Errorf("missing parameter count")
	}
	// every parameter needs at least 6 bytes
	if err := chunk.CheckedRange(4, int(count), 6, b.Size()); err != nil {
		return nil, fmt.Errorf("parameter count %d: %v", count, err)
	}
	params := make([]Parameter, 0, count)
	pos := 4
	for i := 0; i < int(count); i++ {
		n, err := b.U16(pos)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: truncated", i)
		}
		name, err := b.View(pos+2, int(n))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: name exceeds chunk", i)
		}
		pos += 2 + int(n)
		attrs, err := b.View(pos, 4)
		if err != nil {
			return nil, fmt.Errorf("parameter %d (%s): truncated attributes", i, name)
		}
		typ, _ := attrs.U8(0)
		prec, _ := attrs.U8(1)
		size, _ := attrs.U16(2)
		params = append(params, Parameter{
			Name:      string(name),
			Type:      ParamType(typ),
			Precision: Precision(prec),
			ArraySize: size,
		})
		pos += 4
	}
	return params, nil
}
