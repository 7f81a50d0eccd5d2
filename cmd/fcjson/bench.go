package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xdg-go/fcjson"
)

type benchCase struct {
	label string
	size  int
	fn    func() error
}

// benchCommand times the codecs on one input file and compares them with
// encoding/json, jsoniter and the MongoDB driver's Extended JSON reader.
type benchCommand struct {
	cli        *cli
	input      *string
	iterations *int
}

func (cmd *benchCommand) run(_ *kingpin.ParseContext) error {
	input, err := os.ReadFile(*cmd.input)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	text, err := fcjson.DecodeText(input)
	if err != nil {
		return errors.Wrapf(err, "decoding %s", *cmd.input)
	}
	v, err := fcjson.Parse(text)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", *cmd.input)
	}
	bin, err := v.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encoding binary form")
	}

	n := *cmd.iterations
	if n < 1 {
		n = 1
	}
	fmt.Fprintf(cmd.cli.out, "%s: %v text, %v binary, %d iterations\n",
		*cmd.input, humanize.Bytes(uint64(len(text))), humanize.Bytes(uint64(len(bin))), n)

	benches := []benchCase{
		{"parse", len(text), func() error {
			_, err := fcjson.Parse(text)
			return err
		}},
		{"dump", len(text), func() error {
			_ = v.AppendDump(nil, 0, false)
			return nil
		}},
		{"binary encode", len(bin), func() error {
			_, err := v.MarshalBinary()
			return err
		}},
		{"binary decode", len(bin), func() error {
			_, err := fcjson.ParseBinary(bin)
			return err
		}},
		{"encoding/json", len(text), func() error {
			var x interface{}
			return json.Unmarshal(text, &x)
		}},
		{"jsoniter", len(text), func() error {
			var x interface{}
			return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(text, &x)
		}},
	}
	if v.IsObject() {
		benches = append(benches, benchCase{"driver extjson", len(text), func() error {
			var raw bson.Raw
			return bson.UnmarshalExtJSON(text, false, &raw)
		}})
	} else {
		level.Info(cmd.cli.logger).Log("msg", "skipping driver benchmark for non-object document", "type", v.TypeName())
	}

	for _, b := range benches {
		start := time.Now()
		for i := 0; i < n; i++ {
			if err := b.fn(); err != nil {
				return errors.Wrapf(err, "%s benchmark", b.label)
			}
		}
		reportResult(cmd, b.label, b.size*n, time.Since(start))
	}
	return nil
}

func reportResult(cmd *benchCommand, label string, size int, elapsed time.Duration) {
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	throughput := float64(size) / elapsed.Seconds() / 1e6
	fmt.Fprintf(cmd.cli.out, "%15s %10.2f MB/s %12v\n", label, throughput, elapsed)
}

func addBenchCommand(c *cli) {
	cmd := &benchCommand{cli: c}
	clause := c.app.Command("bench", "Measure parse, dump and binary codec throughput.").Action(cmd.run)
	cmd.input = clause.Arg("file", "The JSON file to benchmark.").Required().ExistingFile()
	cmd.iterations = clause.Flag("iterations", "Number of passes over the input.").Short('n').Default("10").Int()
}
