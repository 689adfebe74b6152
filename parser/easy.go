// Implement some easy APIs.
package parser

import (
	"io"
)

// OpenSystemCompressed opens a decompression context for a file
// given its reparse data and the raw compressed stream. A nil
// context with a nil error means the reparse point does not belong
// to the WOF file provider - the file is simply not system
// compressed.
func OpenSystemCompressed(reader io.ReaderAt, compressed_size int64,
	reparse_data []byte, uncompressed_size int64) (
	*SystemDecompressionContext, error) {

	format, ok, err := ParseWofReparseData(reparse_data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return GetSystemDecompressionContext(reader, compressed_size,
		format, uncompressed_size, GetDefaultOptions())
}
