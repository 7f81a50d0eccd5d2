package main

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const (
	compressionNone   = "none"
	compressionSnappy = "snappy"
	compressionZstd   = "zstd"
)

var compressions = []string{compressionNone, compressionSnappy, compressionZstd}

func compress(kind string, data []byte) ([]byte, error) {
	switch kind {
	case compressionSnappy:
		return snappy.Encode(nil, data), nil
	case compressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd encoder")
		}
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(data, nil), nil
	}
	return data, nil
}

func decompress(kind string, data []byte) ([]byte, error) {
	switch kind {
	case compressionSnappy:
		out, err := snappy.Decode(nil, data)
		return out, errors.Wrap(err, "snappy")
	case compressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd decoder")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		return out, errors.Wrap(err, "zstd")
	}
	return data, nil
}
