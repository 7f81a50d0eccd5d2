package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/xdg-go/fcjson"
)

const (
	formatBinary = "fcjson"
	formatBSON   = "bson"
)

var encodings = map[string]fcjson.Encoding{
	"auto":  fcjson.EncodingAuto,
	"utf8":  fcjson.EncodingUTF8,
	"utf16": fcjson.EncodingUTF16,
}

// textOutput holds the flags that control how JSON text is written.
type textOutput struct {
	output   *string
	indent   *int
	escape   *bool
	encoding *string
}

func addTextOutputFlags(clause *kingpin.CmdClause) textOutput {
	return textOutput{
		output:   clause.Flag("output", "Write to this file instead of stdout.").Short('o').String(),
		indent:   clause.Flag("indent", "Spaces per nesting level; 0 writes compact text.").Default("2").Int(),
		escape:   clause.Flag("escape", "Escape non-ASCII characters as \\u sequences.").Bool(),
		encoding: clause.Flag("encoding", "Text encoding of the output file.").Default("auto").Enum("auto", "utf8", "utf16"),
	}
}

func (o textOutput) write(c *cli, v *fcjson.Value) error {
	enc := encodings[*o.encoding]
	if *o.output == "" {
		if enc == fcjson.EncodingUTF16 {
			return errors.New("utf16 output requires --output")
		}
		_, err := io.WriteString(c.out, v.Dump(*o.indent, *o.escape)+"\n")
		return errors.Wrap(err, "writing output")
	}
	if err := v.DumpFile(*o.output, *o.indent, *o.escape, enc); err != nil {
		return errors.Wrapf(err, "writing %s", *o.output)
	}
	level.Info(c.logger).Log("msg", "wrote json", "file", *o.output, "encoding", enc)
	return nil
}

// fmtCommand reformats a JSON text file.
type fmtCommand struct {
	cli    *cli
	input  *string
	stream *bool
	text   textOutput
}

func (cmd *fmtCommand) run(_ *kingpin.ParseContext) error {
	if *cmd.stream {
		return cmd.runStream()
	}
	v, err := fcjson.ParseFile(*cmd.input)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", *cmd.input)
	}
	level.Debug(cmd.cli.logger).Log("msg", "parsed", "file", *cmd.input, "type", v.TypeName())
	return cmd.text.write(cmd.cli, v)
}

// runStream reformats every value of a multi-document file, one per line
// when --indent=0.
func (cmd *fmtCommand) runStream() (err error) {
	if *cmd.text.encoding == "utf16" {
		return errors.New("--stream writes UTF-8 only")
	}
	in, err := os.Open(*cmd.input)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = in.Close() }()

	w := cmd.cli.out
	if *cmd.text.output != "" {
		var f *os.File
		f, err = os.Create(*cmd.text.output)
		if err != nil {
			return errors.Wrap(err, "failed to create output")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = errors.Wrap(cerr, "failed to close output")
			}
		}()
		w = f
	}

	d := fcjson.NewDecoder(in)
	var buf []byte
	count := 0
	for {
		v, err := d.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "parsing %s value %d", *cmd.input, count+1)
		}
		buf = v.AppendDump(buf[:0], *cmd.text.indent, *cmd.text.escape)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, "writing output")
		}
		count++
	}
	level.Info(cmd.cli.logger).Log("msg", "reformatted stream", "file", *cmd.input, "values", count)
	return nil
}

func addFmtCommand(c *cli) {
	cmd := &fmtCommand{cli: c}
	clause := c.app.Command("fmt", "Reformat a JSON text file.").Action(cmd.run)
	cmd.input = clause.Arg("file", "The JSON file to read, in UTF-8 or UTF-16.").Required().ExistingFile()
	cmd.stream = clause.Flag("stream", "Read a sequence of values separated by white space or held in one top-level array.").Bool()
	cmd.text = addTextOutputFlags(clause)
}

// encodeCommand converts JSON text to a binary document.
type encodeCommand struct {
	cli         *cli
	input       *string
	output      *string
	format      *string
	compression *string
}

func (cmd *encodeCommand) run(_ *kingpin.ParseContext) error {
	v, err := fcjson.ParseFile(*cmd.input)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", *cmd.input)
	}

	var buf []byte
	switch *cmd.format {
	case formatBSON:
		buf, err = v.MarshalBSON()
	default:
		buf, err = v.MarshalBinary()
	}
	if err != nil {
		return errors.Wrapf(err, "encoding %s as %s", *cmd.input, *cmd.format)
	}
	raw := len(buf)
	if buf, err = compress(*cmd.compression, buf); err != nil {
		return err
	}
	if err := os.WriteFile(*cmd.output, buf, 0o644); err != nil {
		return errors.Wrap(err, "writing output")
	}

	level.Info(cmd.cli.logger).Log(
		"msg", "encoded",
		"input", *cmd.input,
		"output", *cmd.output,
		"format", *cmd.format,
		"compression", *cmd.compression,
		"size", humanize.Bytes(uint64(raw)),
		"written", humanize.Bytes(uint64(len(buf))),
	)
	return nil
}

func addEncodeCommand(c *cli) {
	cmd := &encodeCommand{cli: c}
	clause := c.app.Command("encode", "Convert a JSON text file to a binary document.").Action(cmd.run)
	cmd.input = clause.Arg("input", "The JSON file to read.").Required().ExistingFile()
	cmd.output = clause.Arg("output", "The binary file to write.").Required().String()
	cmd.format = clause.Flag("format", "Binary format to write.").Default(formatBinary).Enum(formatBinary, formatBSON)
	cmd.compression = clause.Flag("compression", "Compress the output.").Default(compressionNone).Enum(compressions...)
}

// decodeCommand converts a binary document to JSON text.
type decodeCommand struct {
	cli         *cli
	input       *string
	format      *string
	compression *string
	text        textOutput
}

func (cmd *decodeCommand) run(_ *kingpin.ParseContext) error {
	data, err := os.ReadFile(*cmd.input)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	if data, err = decompress(*cmd.compression, data); err != nil {
		return errors.Wrapf(err, "decompressing %s", *cmd.input)
	}

	var v *fcjson.Value
	switch *cmd.format {
	case formatBSON:
		v, err = fcjson.ParseBSON(data)
	default:
		v, err = fcjson.ParseBinary(data)
	}
	if err != nil {
		return errors.Wrapf(err, "decoding %s as %s", *cmd.input, *cmd.format)
	}
	return cmd.text.write(cmd.cli, v)
}

func addDecodeCommand(c *cli) {
	cmd := &decodeCommand{cli: c}
	clause := c.app.Command("decode", "Convert a binary document to JSON text.").Action(cmd.run)
	cmd.input = clause.Arg("input", "The binary file to read.").Required().ExistingFile()
	cmd.format = clause.Flag("format", "Binary format to read.").Default(formatBinary).Enum(formatBinary, formatBSON)
	cmd.compression = clause.Flag("compression", "Decompress the input first.").Default(compressionNone).Enum(compressions...)
	cmd.text = addTextOutputFlags(clause)
}
