package compiler

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Sink is the destination of one compile call. A sink is either committed
// (the artifact becomes visible) or discarded (no trace of it remains, as far
// as the sink is able to guarantee that). Exactly one of Commit or Discard is
// called, once.
type Sink interface {
	io.Writer
	Commit() error
	Discard() error
}

// Output opens sinks. Every compile call opens its own sink.
type Output interface {
	Open() (Sink, error)
	String() string
}

// --- File output -----------------------------------------------------------

// FileOutput writes to a file. The artifact is assembled in a temporary file
// next to the destination and renamed over it on Commit, so that a failed
// compile never leaves a partial artifact behind.
type FileOutput struct {
	Path string
	Perm os.FileMode // permissions of the final file; 0644 if zero
}

// Open creates the temporary file.
func (o FileOutput) Open() (Sink, error) {
	if o.Path == "" {
		return nil, errors.New("no output path given")
	}
	dir, base := filepath.Split(o.Path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, err
	}
	perm := o.Perm
	if perm == 0 {
		perm = 0644
	}
	return &fileSink{f: f, path: o.Path, perm: perm}, nil
}

func (o FileOutput) String() string {
	return o.Path
}

type fileSink struct {
	f    *os.File
	path string
	perm os.FileMode
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

func (s *fileSink) Commit() error {
	tmp := s.f.Name()
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		os.Remove(tmp)
		return err
	}
	if err := s.f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, s.perm); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *fileSink) Discard() error {
	tmp := s.f.Name()
	err := s.f.Close()
	if rmErr := os.Remove(tmp); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// --- Writer output ---------------------------------------------------------

// WriterOutput writes to an io.Writer, e.g. os.Stdout. Bytes written before a
// failure cannot be taken back; Discard only closes W if it is an io.Closer
// and CloseOnDone is set.
type WriterOutput struct {
	W           io.Writer
	Name        string
	CloseOnDone bool
}

// Open returns a sink writing through to W.
func (o WriterOutput) Open() (Sink, error) {
	if o.W == nil {
		return nil, errors.New("no writer given")
	}
	return &writerSink{o: o}, nil
}

func (o WriterOutput) String() string {
	if o.Name == "" {
		return "<writer>"
	}
	return o.Name
}

type writerSink struct {
	o WriterOutput
}

func (s *writerSink) Write(p []byte) (int, error) {
	return s.o.W.Write(p)
}

func (s *writerSink) Commit() error {
	return s.close()
}

func (s *writerSink) Discard() error {
	return s.close()
}

func (s *writerSink) close() error {
	if c, ok := s.o.W.(io.Closer); ok && s.o.CloseOnDone {
		return c.Close()
	}
	return nil
}
