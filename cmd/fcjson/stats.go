package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/xdg-go/fcjson"
)

var statsTypes = []fcjson.Type{
	fcjson.TypeNull,
	fcjson.TypeBool,
	fcjson.TypeInt,
	fcjson.TypeUint,
	fcjson.TypeFloat,
	fcjson.TypeString,
	fcjson.TypeBinary,
	fcjson.TypeObject,
	fcjson.TypeArray,
}

// valueStats summarizes the shape of a document.
type valueStats struct {
	counts      [fcjson.TypeBinary + 1]int
	values      int
	maxDepth    int
	members     int
	elements    int
	keyBytes    uint64
	stringBytes uint64
	binaryBytes uint64
}

func collectStats(v *fcjson.Value) *valueStats {
	s := &valueStats{}
	s.walk(v, 0)
	return s
}

// walk records v, which is nested inside depth containers.
func (s *valueStats) walk(v *fcjson.Value, depth int) {
	s.values++
	s.counts[v.Type()]++

	switch v.Type() {
	case fcjson.TypeString:
		str, _ := v.AsString()
		s.stringBytes += uint64(len(str))
	case fcjson.TypeBinary:
		b, _ := v.AsBinary()
		s.binaryBytes += uint64(len(b))
	case fcjson.TypeObject:
		s.enter(depth)
		v.Range(func(key string, child *fcjson.Value) bool {
			s.members++
			s.keyBytes += uint64(len(key))
			s.walk(child, depth+1)
			return true
		})
	case fcjson.TypeArray:
		s.enter(depth)
		items, _ := v.AsArray()
		s.elements += len(items)
		for _, child := range items {
			s.walk(child, depth+1)
		}
	}
}

func (s *valueStats) enter(depth int) {
	if depth+1 > s.maxDepth {
		s.maxDepth = depth + 1
	}
}

// statsCommand prints stats for each document in files.
type statsCommand struct {
	cli    *cli
	files  *[]string
	binary *bool
}

func (cmd *statsCommand) run(_ *kingpin.ParseContext) error {
	for _, f := range *cmd.files {
		if err := cmd.printStats(f); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *statsCommand) printStats(name string) error {
	fi, err := os.Stat(name)
	if err != nil {
		return errors.Wrap(err, "failed to read fileinfo")
	}

	var v *fcjson.Value
	if *cmd.binary {
		v, err = fcjson.ParseBinaryFile(name)
	} else {
		v, err = fcjson.ParseFile(name)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}

	bin, err := v.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "failed to encode binary form")
	}
	bsonSize := "-"
	if doc, err := v.MarshalBSON(); err == nil {
		bsonSize = humanize.Bytes(uint64(len(doc)))
	}
	compact := v.AppendDump(nil, 0, false)
	stats := collectStats(v)

	out := cmd.cli.out
	bold := color.New(color.Bold)
	bold.Fprintf(out, "%s:\n", name)
	fmt.Fprintf(
		out,
		"\tfile size: %v, compact text: %v, binary: %v, bson: %v\n",
		humanize.Bytes(uint64(fi.Size())),
		humanize.Bytes(uint64(len(compact))),
		humanize.Bytes(uint64(len(bin))),
		bsonSize,
	)
	fmt.Fprintf(
		out,
		"\tvalues: %s, max depth: %d, object members: %s, array elements: %s\n",
		humanize.Comma(int64(stats.values)),
		stats.maxDepth,
		humanize.Comma(int64(stats.members)),
		humanize.Comma(int64(stats.elements)),
	)
	fmt.Fprintf(out, "\tfingerprint: %016x\n", xxhash.Sum64(bin))
	fmt.Fprintf(
		out,
		"\tkey bytes: %v, string bytes: %v, binary bytes: %v\n",
		humanize.Bytes(stats.keyBytes),
		humanize.Bytes(stats.stringBytes),
		humanize.Bytes(stats.binaryBytes),
	)
	bold.Fprintln(out, "\ttypes:")
	for _, t := range statsTypes {
		if n := stats.counts[t]; n > 0 {
			fmt.Fprintf(out, "\t\t%s: %s\n", t, humanize.Comma(int64(n)))
		}
	}
	return nil
}

func addStatsCommand(c *cli) {
	cmd := &statsCommand{cli: c}
	summary := c.app.Command("stats", "Print stats for JSON documents.").Action(cmd.run)
	cmd.binary = summary.Flag("binary", "Read the files as binary documents.").Bool()
	cmd.files = summary.Arg("file", "The files to inspect.").Required().ExistingFiles()
}
