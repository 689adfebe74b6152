package main

import (
	"io"
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-wof/parser"
)

// getStreamReader wraps the dumped compressed stream in a paged
// reader, optionally embedded at an offset in a larger image.
func getStreamReader(fd *os.File, image_offset int64) (
	io.ReaderAt, int64) {

	stat, err := fd.Stat()
	kingpin.FatalIfError(err, "Can not stat stream file")

	options := parser.GetDefaultOptions()
	reader, err := parser.NewPagedReader(
		&parser.OffsetReader{
			Offset: image_offset,
			Reader: fd,
		}, options.PageSize, options.PageCacheSize)
	kingpin.FatalIfError(err, "Can not open stream file")

	return reader, stat.Size() - image_offset
}

func parseFormat(name string) parser.CompressionFormat {
	switch name {
	case "XPRESS4K", "xpress4k":
		return parser.FORMAT_XPRESS4K
	case "XPRESS8K", "xpress8k":
		return parser.FORMAT_XPRESS8K
	case "XPRESS16K", "xpress16k":
		return parser.FORMAT_XPRESS16K
	case "LZX", "LZX32K", "lzx", "lzx32k":
		return parser.FORMAT_LZX32K
	}
	kingpin.Fatalf("Unknown compression format %v", name)
	return 0
}
