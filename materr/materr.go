/*
Package materr defines the failure taxonomy shared by the packaging layer.

Every failure of a compile call is terminal. Errors are wrapped into an
*Error carrying a Kind, so that callers may decide whether to retry with a
different package or output:

	if materr.IsKind(err, materr.KindSinkOpen) {
		// try another destination
	}

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package materr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a packaging failure.
type ErrorKind int

const (
	// KindUnknown is the zero value and is never produced by this module.
	KindUnknown ErrorKind = iota
	// KindSinkOpen: the destination could not be created or opened.
	KindSinkOpen
	// KindSinkWrite: writing to or committing the destination failed.
	KindSinkWrite
	// KindPackageParse: the source package is malformed or truncated.
	KindPackageParse
	// KindMetadata: reflection generation or shader listing failed.
	KindMetadata
	// KindShaderExtraction: a shader variant is missing or unreadable.
	KindShaderExtraction
	// KindDuplicateVariantKey: two shader descriptors encode to the same key.
	KindDuplicateVariantKey
	// KindConfig: the compile configuration is unusable.
	KindConfig
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSinkOpen:
		return "SinkOpenError"
	case KindSinkWrite:
		return "SinkWriteError"
	case KindPackageParse:
		return "PackageParseError"
	case KindMetadata:
		return "MetadataError"
	case KindShaderExtraction:
		return "ShaderExtractionError"
	case KindDuplicateVariantKey:
		return "DuplicateVariantKeyError"
	case KindConfig:
		return "ConfigError"
	default:
		return "UnknownError"
	}
}

// Error is a classified packaging error.
type Error struct {
	Kind ErrorKind // failure class
	Op   string    // operation which failed, e.g. "blob.Encode"
	Err  error     // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with kind and op. If err already is an *Error of the same
// kind, it is returned unchanged.
func New(kind ErrorKind, op string, err error) error {
	var me *Error
	if errors.As(err, &me) && me.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates an *Error with a formatted cause.
func Errorf(kind ErrorKind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first (outermost) *Error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an *Error of the given kind,
// at any depth.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var me *Error
		if !errors.As(err, &me) {
			return false
		}
		if me.Kind == kind {
			return true
		}
		err = me.Err
	}
	return false
}
