/*
Package compiler turns material packages into deployable artifacts.

A Compiler dispatches one package to one encoder, selected by OutputMode:

▪︎ ModeBlob writes an indexed blob (package blob), with reflection metadata
generated by package matquery.

▪︎ ModeHeader writes the package as a listing of byte literals (package header).

▪︎ ModeRaw writes the package unmodified.

The compiler owns the output sink for the duration of one call. It commits
the sink if the encoder succeeds and discards it otherwise; with a FileOutput
this means that either the complete artifact appears at its path or nothing
is changed there.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package compiler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/npillmayer/matpack/blob"
	"github.com/npillmayer/matpack/header"
	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/matpack/matquery"
	"github.com/npillmayer/matpack/shader"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.compiler'
func tracer() tracing.Trace {
	return tracing.Select("matpack.compiler")
}

// OutputMode selects the artifact format.
type OutputMode int

// Output modes.
const (
	ModeBlob OutputMode = iota
	ModeHeader
	ModeRaw
)

func (m OutputMode) String() string {
	switch m {
	case ModeBlob:
		return "blob"
	case ModeHeader:
		return "header"
	case ModeRaw:
		return "raw"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseOutputMode returns the output mode for a name as produced by String.
func ParseOutputMode(name string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "blob":
		return ModeBlob, nil
	case "header", "array":
		return ModeHeader, nil
	case "raw", "package":
		return ModeRaw, nil
	}
	return 0, fmt.Errorf("unknown output mode: %q", name)
}

// Config configures one compile call.
type Config struct {
	Mode       OutputMode
	Output     Output
	Backend    shader.Backend   // shaders to package in ModeBlob
	Debug      bool             // ModeHeader: prepend a banner
	Invocation string           // ModeHeader: command line for the banner
	Clock      func() time.Time // ModeHeader: timestamp source; time.Now if nil
}

type encodeFunc func(w io.Writer, pkg []byte, conf Config) error

// Compiler dispatches packages to encoders.
type Compiler struct {
	encoders map[OutputMode]encodeFunc
}

// New creates a compiler knowing all output modes.
func New() *Compiler {
	return &Compiler{
		encoders: map[OutputMode]encodeFunc{
			ModeBlob:   writeBlob,
			ModeHeader: writeHeader,
			ModeRaw:    writeRaw,
		},
	}
}

// Compile encodes pkg as configured.
//
// The sink is opened before any encoder runs; if that fails, Compile returns a
// SinkOpenError. Otherwise the encoder's error is returned unchanged, and the
// sink is discarded. On success, the sink is committed; a failing commit is a
// SinkWriteError. If an encoder panics, the sink is discarded and the panic
// continues.
//
// pkg is only read, and Compile may be called concurrently with the same pkg.
func (c *Compiler) Compile(pkg []byte, conf Config) (err error) {
	encode, ok := c.encoders[conf.Mode]
	if !ok {
		return materr.Errorf(materr.KindConfig, "compiler.Compile", "unsupported output mode %s", conf.Mode)
	}
	if conf.Output == nil {
		return materr.Errorf(materr.KindConfig, "compiler.Compile", "no output configured")
	}
	sink, err := conf.Output.Open()
	if err != nil {
		tracer().Errorf("unable to create %s output %s: %v", conf.Mode, conf.Output, err)
		return materr.New(materr.KindSinkOpen, "compiler.Compile", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if derr := sink.Discard(); derr != nil {
				tracer().Errorf("discarding output %s: %v", conf.Output, derr)
			}
			panic(r)
		}
		if err != nil {
			if derr := sink.Discard(); derr != nil {
				tracer().Errorf("discarding output %s: %v", conf.Output, derr)
			}
			return
		}
		if cerr := sink.Commit(); cerr != nil {
			err = materr.New(materr.KindSinkWrite, "compiler.Compile", cerr)
		}
	}()
	tracer().Debugf("compiling package of %d bytes as %s to %s", len(pkg), conf.Mode, conf.Output)
	return encode(sink, pkg, conf)
}

// Compile encodes pkg with a default compiler.
func Compile(pkg []byte, conf Config) error {
	return New().Compile(pkg, conf)
}

// --- Encoders --------------------------------------------------------------

func writeBlob(w io.Writer, pkg []byte, conf Config) error {
	r, err := shader.Parse(pkg, conf.Backend)
	if err != nil {
		return err
	}
	_, err = blob.Encode(w, &PackageSource{Reader: r})
	return err
}

func writeHeader(w io.Writer, pkg []byte, conf Config) error {
	opts := header.DefaultOptions()
	opts.Debug = conf.Debug
	opts.Invocation = conf.Invocation
	if conf.Clock != nil {
		opts.Now = conf.Clock
	}
	return header.Encode(w, pkg, opts)
}

func writeRaw(w io.Writer, pkg []byte, conf Config) error {
	if _, err := w.Write(pkg); err != nil {
		return materr.New(materr.KindSinkWrite, "compiler.writeRaw", err)
	}
	return nil
}

// --- Package source --------------------------------------------------------

// PackageSource adapts a parsed material package to blob.Source, generating
// reflection metadata with package matquery.
type PackageSource struct {
	Reader *shader.Reader
}

// Reflection returns the material's JSON reflection metadata.
func (s *PackageSource) Reflection() ([]byte, error) {
	return matquery.JSON(s.Reader)
}

// Shaders lists the material's shaders.
func (s *PackageSource) Shaders() ([]shader.Descriptor, error) {
	return s.Reader.Shaders()
}

// Content returns a shader's bytes.
func (s *PackageSource) Content(d shader.Descriptor) ([]byte, error) {
	return s.Reader.Content(d)
}
