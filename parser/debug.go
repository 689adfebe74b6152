package parser

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var (
	debug     = false
	LZX_debug = false

	WOF_DEBUG *bool
)

func Debug(arg interface{}) {
	spew.Dump(arg)
}

type Debugger interface {
	DebugString() string
}

func DebugString(arg interface{}, indent string) string {
	debugger, ok := arg.(Debugger)
	if debug && ok {
		lines := strings.Split(debugger.DebugString(), "\n")
		for idx, line := range lines {
			lines[idx] = indent + line
		}
		return strings.Join(lines, "\n")
	}

	return ""
}

func Printf(fmt_str string, args ...interface{}) {
	if debug {
		fmt.Printf(fmt_str, args...)
	}
}

func LZXPrintf(fmt_str string, args ...interface{}) {
	if LZX_debug {
		fmt.Printf(fmt_str, args...)
	}
}

func debugHexDump(in []byte) string {
	if debug || LZX_debug {
		return hex.Dump(in)
	}
	return ""
}

func DebugPrint(fmt_str string, v ...interface{}) {
	if WOF_DEBUG == nil {
		// os.Environ() seems very expensive in Go so we cache
		// it.
		for _, x := range os.Environ() {
			if strings.HasPrefix(x, "WOF_DEBUG=") {
				value := true
				WOF_DEBUG = &value
				break
			}
		}
	}

	if WOF_DEBUG == nil {
		value := false
		WOF_DEBUG = &value
	}

	if *WOF_DEBUG {
		fmt.Printf(fmt_str, v...)
	}
}
