package packer

import (
	"errors"
	"fmt"
)

// Kind classifies save failures.
type Kind int

const (
	// KindNone is reported for nil and foreign errors.
	KindNone Kind = iota
	// KindDimension means the image size is not compressible; resize and retry.
	KindDimension
	// KindIO means creating, writing, flushing or renaming the file failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindDimension:
		return "dimension"
	case KindIO:
		return "io"
	default:
		return "none"
	}
}

// ErrDimension matches every KindDimension error with errors.Is.
var ErrDimension = errors.New("packer: dimensions must be multiples of 4")

// Error is returned by SaveCompressed and PackAndSave.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("packer: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrDimension && e.Kind == KindDimension
}

// KindOf returns the Kind carried by err, or KindNone.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

func dimensionError(path string, w, h int) error {
	return &Error{Kind: KindDimension, Op: "check", Path: path, Err: fmt.Errorf("%dx%d is not a multiple of 4", w, h)}
}

func ioError(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}
