/*
Package header writes material packages as source-embeddable byte arrays.

The output is meant to be included into a C-style array initializer:

	// This file was generated with: matc compile -m header -d bricks.pkg
	// Created: 2026-10-18 at 09:41:07

	0x4d, 0x41, 0x54, 0x5f, …  (20 per line)

The banner is optional (Options.Debug). The byte listing is a lossless
passthrough of the package; it is never re-derived from its contents.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package header

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/matpack/materr"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'matpack.header'
func tracer() tracing.Trace {
	return tracing.Select("matpack.header")
}

// DefaultPerLine is the number of byte tokens per line.
const DefaultPerLine = 20

// DefaultTimeLayout formats the banner's timestamp.
const DefaultTimeLayout = "2006-01-02 at 15:04:05"

// Options configures the array encoder.
type Options struct {
	Debug      bool             // prepend a banner
	Invocation string           // command line reported in the banner
	Now        func() time.Time // clock for the banner; time.Now if nil
	TimeLayout string           // layout for the banner's timestamp
	PerLine    int              // tokens per line
	Upper      bool             // upper case hex digits
}

// DefaultOptions returns options producing the classic layout without banner.
func DefaultOptions() Options {
	return Options{
		Now:        time.Now,
		TimeLayout: DefaultTimeLayout,
		PerLine:    DefaultPerLine,
	}
}

func (opts Options) normalized() Options {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.PerLine <= 0 {
		opts.PerLine = DefaultPerLine
	}
	return opts
}

// bannerEscaper keeps the invocation on the first banner line.
var bannerEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Encode writes pkg to w as a listing of byte literals. Every byte is written
// as `0xhh, `; each line, including a partial last one, ends in a newline.
// Line breaks in opts.Invocation are written as escape sequences.
// Write failures are reported as SinkWriteError.
func Encode(w io.Writer, pkg []byte, opts Options) error {
	opts = opts.normalized()
	bw := bufio.NewWriter(w)
	if opts.Debug {
		fmt.Fprintf(bw, "// This file was generated with: %s\n", bannerEscaper.Replace(opts.Invocation))
		fmt.Fprintf(bw, "// Created: %s\n", opts.Now().Format(opts.TimeLayout))
		bw.WriteByte('\n')
	}
	digits := "0123456789abcdef"
	if opts.Upper {
		digits = "0123456789ABCDEF"
	}
	token := []byte("0x00, ")
	for i, b := range pkg {
		if i > 0 && i%opts.PerLine == 0 {
			bw.WriteByte('\n')
		}
		token[2], token[3] = digits[b>>4], digits[b&0x0f]
		bw.Write(token)
	}
	if len(pkg) > 0 {
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return materr.New(materr.KindSinkWrite, "header.Encode", err)
	}
	tracer().Infof("wrote %d bytes as %d lines of byte literals", len(pkg), (len(pkg)+opts.PerLine-1)/opts.PerLine)
	return nil
}

// Decode parses a byte listing as produced by Encode back into bytes.
// Comment lines and blank lines are skipped.
func Decode(text []byte) ([]byte, error) {
	out := make([]byte, 0, len(text)/6)
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "//") {
			continue
		}
		tokens := strings.FieldsFunc(l, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, tok := range tokens {
			if !strings.HasPrefix(tok, "0x") && !strings.HasPrefix(tok, "0X") {
				return nil, fmt.Errorf("line %d: not a hex byte literal: %q", line, tok)
			}
			n, err := strconv.ParseUint(tok[2:], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			out = append(out, byte(n))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
