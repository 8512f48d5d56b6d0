package qrkit

import "errors"

var (
	// ErrNotFound is returned when no symbol could be located in the image.
	ErrNotFound = errors.New("qr code not found")

	// ErrChecksum is returned when error correction cannot recover the data.
	ErrChecksum = errors.New("checksum error")

	// ErrFormat is returned when a located symbol is structurally invalid.
	ErrFormat = errors.New("format error")

	// ErrWriter is returned when content cannot be encoded.
	ErrWriter = errors.New("writer error")
)
