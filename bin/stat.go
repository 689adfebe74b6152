package main

import (
	"fmt"
	"io/ioutil"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-wof/parser"
)

var (
	stat_command = app.Command(
		"stat", "Interpret a dumped WOF reparse buffer.")

	stat_command_file_arg = stat_command.Arg(
		"reparse", "File holding the raw reparse data",
	).Required().File()
)

func doSTAT() {
	data, err := ioutil.ReadAll(*stat_command_file_arg)
	kingpin.FatalIfError(err, "Can not read reparse data")

	format, ok, err := parser.ParseWofReparseData(data)
	kingpin.FatalIfError(err, "Invalid WOF reparse data")

	if !ok {
		fmt.Println("Not a WOF system compressed file.")
		return
	}

	fmt.Printf("WOF file provider, algorithm %v (chunk size %v)\n",
		format, format.ChunkSize())
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "stat":
			doSTAT()
		default:
			return false
		}
		return true
	})
}
