// Command fcjson formats, converts and inspects JSON documents using the
// fcjson package.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	glog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// cli holds the state shared by every command.
type cli struct {
	app      *kingpin.Application
	out      io.Writer
	logOut   io.Writer
	logLevel *string
	logger   glog.Logger
}

func newCLI(out, logOut io.Writer) *cli {
	c := &cli{
		app:    kingpin.New("fcjson", "Format, convert and inspect JSON documents."),
		out:    out,
		logOut: logOut,
		logger: glog.NewNopLogger(),
	}
	c.logLevel = c.app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("info").Enum("debug", "info", "warn", "error")
	c.app.PreAction(c.setupLogger)

	addFmtCommand(c)
	addEncodeCommand(c)
	addDecodeCommand(c)
	addStatsCommand(c)
	addBenchCommand(c)
	return c
}

func (c *cli) setupLogger(_ *kingpin.ParseContext) error {
	c.logger = newLogger(c.logOut, *c.logLevel)
	return nil
}

func newLogger(w io.Writer, lvl string) glog.Logger {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	logger := glog.NewLogfmtLogger(glog.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return glog.With(logger, "ts", glog.DefaultTimestampUTC)
}

func (c *cli) run(args []string) error {
	_, err := c.app.Parse(args)
	return err
}

func main() {
	c := newCLI(os.Stdout, os.Stderr)
	if err := c.run(os.Args[1:]); err != nil {
		exitWithErr(err)
	}
}

func exitWithErr(err error) {
	fmt.Fprintf(os.Stderr, "fcjson: %v\n", err)
	os.Exit(1)
}
