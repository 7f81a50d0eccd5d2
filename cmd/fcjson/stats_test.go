package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdg-go/fcjson"
)

func TestCollectStats(t *testing.T) {
	v, err := fcjson.ParseString(`{"ab": [1, -1, 18446744073709551615, [[]]], "c": "xyz", "d": {"e": null, "f": 1.5}}`)
	require.NoError(t, err)
	v.Key("g").SetBinary([]byte{1, 2})

	stats := collectStats(v)
	require.Equal(t, 12, stats.values)
	require.Equal(t, 4, stats.maxDepth)
	require.Equal(t, 6, stats.members)
	require.Equal(t, 5, stats.elements)
	require.Equal(t, uint64(7), stats.keyBytes)
	require.Equal(t, uint64(3), stats.stringBytes)
	require.Equal(t, uint64(2), stats.binaryBytes)
	require.Equal(t, 2, stats.counts[fcjson.TypeInt])
	require.Equal(t, 1, stats.counts[fcjson.TypeUint])
	require.Equal(t, 3, stats.counts[fcjson.TypeArray])
	require.Equal(t, 2, stats.counts[fcjson.TypeObject])
}

func TestCollectStatsScalar(t *testing.T) {
	stats := collectStats(fcjson.Int(3))
	require.Equal(t, 1, stats.values)
	require.Equal(t, 0, stats.maxDepth)
}

func TestStatsCommand(t *testing.T) {
	in := writeTemp(t, "in.json", []byte(sampleDoc))

	out, _, err := runCLI(t, "stats", in)
	require.NoError(t, err)
	require.Contains(t, out, in+":")
	require.Contains(t, out, "values: 8, max depth: 2, object members: 4, array elements: 3")
	require.Contains(t, out, "\t\tInteger: 1\n")
	require.Contains(t, out, "\t\tObject: 2\n")
	require.NotContains(t, out, "Unsigned Integer")

	bin := filepath.Join(t.TempDir(), "in.bin")
	_, _, err = runCLI(t, "encode", in, bin)
	require.NoError(t, err)

	textOut := out
	out, _, err = runCLI(t, "stats", "--binary", bin)
	require.NoError(t, err)
	require.Contains(t, out, "values: 8, max depth: 2")
	require.Equal(t, fingerprint(t, textOut), fingerprint(t, out))

	_, _, err = runCLI(t, "stats", bin)
	require.Error(t, err)
}

func fingerprint(t *testing.T, out string) string {
	t.Helper()
	i := strings.Index(out, "fingerprint: ")
	require.GreaterOrEqual(t, i, 0, out)
	return out[i : i+len("fingerprint: ")+16]
}

func TestBenchCommand(t *testing.T) {
	in := writeTemp(t, "in.json", []byte(sampleDoc))

	out, _, err := runCLI(t, "bench", "-n", "2", in)
	require.NoError(t, err)
	for _, label := range []string{"parse", "dump", "binary encode", "binary decode", "encoding/json", "jsoniter", "driver extjson"} {
		require.Contains(t, out, label+" ")
	}

	arr := writeTemp(t, "arr.json", []byte(`[1, 2, 3]`))
	out, logs, err := runCLI(t, "bench", "-n", "1", arr)
	require.NoError(t, err)
	require.NotContains(t, out, "driver extjson")
	require.Contains(t, logs, "skipping driver benchmark")
}
