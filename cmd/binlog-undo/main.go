//
// main.go
//
// binlog-undo: reads a row-based binlog and writes its compensating log.
//

package main

import (
	"context"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/jlchen/binlog-undo/binlog"
)

func main() {
	var args struct {
		In      string `arg:"--in,required" help:"input binlog path"`
		Out     string `arg:"--out,required" help:"output binlog path"`
		Start   int64  `arg:"--start" default:"0" help:"start offset (default: right after the format-description event)"`
		Verbose bool   `arg:"--verbose" help:"enable debug logging"`
	}
	arg.MustParse(&args)

	log := logrus.StandardLogger()
	if args.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	in, err := os.Open(args.In)
	if err != nil {
		log.WithError(err).Fatal("opening input binlog")
	}
	defer in.Close()

	out, err := os.Create(args.Out)
	if err != nil {
		log.WithError(err).Fatal("creating output binlog")
	}

	cfg := binlog.RunConfig{
		StartOffset:         args.Start,
		PartialColumnPolicy: binlog.RejectPartial,
		Log:                 log,
	}

	stats, err := binlog.Run(context.Background(), in, out, cfg)
	out.Close()
	if err != nil {
		log.WithError(err).Error("undo run failed")
		if removeErr := os.Remove(args.Out); removeErr != nil {
			log.WithError(removeErr).Warn("could not remove partial output file")
		}
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"transactions": stats.Transactions,
		"row_events":   stats.RowEvents,
	}).Info("undo complete")
}
