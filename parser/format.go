/*
WOF (Windows Overlay Filter) reparse point interpretation.

A system compressed file carries an IO_REPARSE_TAG_WOF reparse point
whose data is a WOF_EXTERNAL_INFO followed by a
FILE_PROVIDER_EXTERNAL_INFO_V1 naming the compression algorithm. The
compressed payload lives in the WofCompressedData alternate data
stream.
*/

package parser

import (
	"encoding/binary"
	"fmt"
)

const (
	IO_REPARSE_TAG_WOF = 0x80000017

	WOF_CURRENT_VERSION = 1
	WOF_PROVIDER_FILE   = 2

	FILE_PROVIDER_CURRENT_VERSION = 1
)

type CompressionFormat uint32

const (
	FORMAT_XPRESS4K  CompressionFormat = 0
	FORMAT_LZX32K    CompressionFormat = 1
	FORMAT_XPRESS8K  CompressionFormat = 2
	FORMAT_XPRESS16K CompressionFormat = 3
)

func (self CompressionFormat) ChunkSize() int64 {
	switch self {
	case FORMAT_XPRESS4K:
		return 4096
	case FORMAT_XPRESS8K:
		return 8192
	case FORMAT_XPRESS16K:
		return 16384
	case FORMAT_LZX32K:
		return LZX_WINDOW_SIZE
	}
	return 0
}

func (self CompressionFormat) IsValid() bool {
	return self.ChunkSize() != 0
}

func (self CompressionFormat) String() string {
	switch self {
	case FORMAT_XPRESS4K:
		return "XPRESS4K"
	case FORMAT_XPRESS8K:
		return "XPRESS8K"
	case FORMAT_XPRESS16K:
		return "XPRESS16K"
	case FORMAT_LZX32K:
		return "LZX32K"
	}
	return fmt.Sprintf("CompressionFormat(%d)", uint32(self))
}

// ParseWofReparseData interprets the reparse data of a file - the
// buffer following the reparse point header - as a WOF file provider
// record. Files whose reparse point belongs to another provider are
// simply not system compressed; that is reported as ok = false, not
// as an error. A WOF file provider record naming an unknown
// algorithm is an error.
func ParseWofReparseData(buf []byte) (
	format CompressionFormat, ok bool, err error) {

	// WOF_EXTERNAL_INFO {Version, Provider} +
	// FILE_PROVIDER_EXTERNAL_INFO_V1 {Version, Algorithm}
	if len(buf) < 16 {
		return 0, false, nil
	}

	wof_version := binary.LittleEndian.Uint32(buf[0:])
	provider := binary.LittleEndian.Uint32(buf[4:])
	if wof_version != WOF_CURRENT_VERSION || provider != WOF_PROVIDER_FILE {
		return 0, false, nil
	}

	file_version := binary.LittleEndian.Uint32(buf[8:])
	if file_version != FILE_PROVIDER_CURRENT_VERSION {
		return 0, false, fmt.Errorf(
			"%w: file provider version %v", InvalidFormatError,
			file_version)
	}

	format = CompressionFormat(binary.LittleEndian.Uint32(buf[12:]))
	if !format.IsValid() {
		return 0, false, fmt.Errorf(
			"%w: algorithm %v", InvalidFormatError, uint32(format))
	}

	return format, true, nil
}
