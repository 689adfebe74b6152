package main

import (
	"io"
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-wof/parser"
)

var (
	cat_command = app.Command(
		"cat", "Decompress a stream to stdout or a file.")

	cat_command_file_arg = cat_command.Arg(
		"stream", "The dumped WofCompressedData stream to decompress",
	).Required().File()

	cat_command_size = cat_command.Flag(
		"size", "The uncompressed file size.",
	).Required().Int64()

	cat_command_format = cat_command.Flag(
		"format", "Compression format (XPRESS4K, XPRESS8K, XPRESS16K, LZX).",
	).Required().String()

	cat_command_offset = cat_command.Flag(
		"offset", "The offset to start reading.",
	).Int64()

	cat_command_count = cat_command.Flag(
		"count", "Number of bytes to read (default to the end).",
	).Int64()

	cat_command_image_offset = cat_command.Flag(
		"image_offset", "The offset of the stream in the image.",
	).Int64()

	cat_command_output_file = cat_command.Flag(
		"out", "Write to this file",
	).OpenFile(os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0666))
)

func doCAT() {
	format := parseFormat(*cat_command_format)
	reader, compressed_size := getStreamReader(
		*cat_command_file_arg, *cat_command_image_offset)

	ctx, err := parser.GetSystemDecompressionContext(
		reader, compressed_size, format, *cat_command_size,
		parser.GetDefaultOptions())
	kingpin.FatalIfError(err, "Can not open compressed stream")
	defer ctx.Close()

	var fd io.WriteCloser = os.Stdout
	if *cat_command_output_file != nil {
		fd = *cat_command_output_file
		defer fd.Close()
	}

	offset := *cat_command_offset
	end := ctx.Size()
	if *cat_command_count != 0 {
		end = offset + *cat_command_count
	}

	buf := make([]byte, 1024*1024)
	for offset < end {
		to_read := end - offset
		if to_read > int64(len(buf)) {
			to_read = int64(len(buf))
		}

		n, err := ctx.ReadAt(buf[:to_read], offset)
		if n == 0 {
			kingpin.FatalIfError(err, "Read error at offset %v", offset)
			return
		}
		fd.Write(buf[:n])
		offset += int64(n)
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "cat":
			doCAT()
		default:
			return false
		}
		return true
	})
}
