package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-wof/parser"
)

var (
	info_command = app.Command(
		"info", "Dump the chunk table of a compressed stream.")

	info_command_file_arg = info_command.Arg(
		"stream", "The dumped WofCompressedData stream to inspect",
	).Required().File()

	info_command_size = info_command.Flag(
		"size", "The uncompressed file size.",
	).Required().Int64()

	info_command_format = info_command.Flag(
		"format", "Compression format (XPRESS4K, XPRESS8K, XPRESS16K, LZX).",
	).Required().String()

	info_command_image_offset = info_command.Flag(
		"image_offset", "The offset of the stream in the image.",
	).Int64()
)

func doInfo() {
	format := parseFormat(*info_command_format)
	reader, compressed_size := getStreamReader(
		*info_command_file_arg, *info_command_image_offset)

	index, err := parser.ParseChunkIndex(
		reader, compressed_size, *info_command_size, format.ChunkSize())
	kingpin.FatalIfError(err, "Can not parse chunk table")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Chunk",
		"Start",
		"End",
		"Compressed",
		"Uncompressed",
		"Stored",
	})
	table.SetCaption(true, fmt.Sprintf(
		"%v stream, %v chunks of %v bytes",
		format, index.NumChunks(), index.ChunkSize()))
	defer table.Render()

	for i := 0; i < index.NumChunks(); i++ {
		start, end := index.ChunkRange(i)
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%#x", start),
			fmt.Sprintf("%#x", end),
			fmt.Sprintf("%d", end-start),
			fmt.Sprintf("%d", index.ChunkUncompressedSize(i)),
			fmt.Sprintf("%v", index.IsStored(i)),
		})
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "info":
			doInfo()
		default:
			return false
		}
		return true
	})
}
