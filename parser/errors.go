package parser

import "errors"

// Error kinds surfaced to callers. Decoder internals wrap
// CorruptStreamError with detail; callers match with errors.Is().
var (
	// The reparse buffer is structurally a WOF buffer but carries
	// values we can not work with.
	InvalidFormatError = errors.New("Not a valid WOF compression format")

	// The compressed stream can not be decoded: truncated chunk,
	// malformed Huffman lengths, underflowing match offset,
	// overflowing match length or a non monotonic chunk table.
	CorruptStreamError = errors.New("Corrupt compressed stream")

	// The caller passed a negative offset or a nil buffer.
	InvalidArgumentError = errors.New("Invalid argument")

	shortReadError = errors.New("Short read from compressed stream")
)
