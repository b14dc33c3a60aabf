//
// main.go
//
// binlog-dump: read-only inspection tool for verifying scan/invert
// output by hand.
//

package main

import (
	"io"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/jlchen/binlog-undo/binlog"
)

func main() {
	var args struct {
		Path  string `arg:"-p,required" help:"binlog path"`
		Start int    `arg:"-s" default:"0" help:"number of events to skip"`
		Count int    `arg:"-c" default:"-1" help:"number of events to show (-1: all)"`
	}
	arg.MustParse(&args)

	file, err := os.Open(args.Path)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	parser, err := binlog.NewParser(file)
	if err != nil {
		panic(err)
	}

	for i := 0; i < args.Start; i++ {
		if err := parser.SkipEvent(); err != nil {
			panic(err)
		}
	}

	for i := 0; args.Count < 0 || i < args.Count; i++ {
		event, err := parser.ReadEvent()
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}
		binlog.PrintEvent(os.Stdout, event)
	}
}
