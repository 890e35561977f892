package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conformanceLog = `info: Input file: /conf/Streams/a.bit
info: MD5 message digest: 0123456789abcdef
info: MD5 digest matches the reference MD5 digest
======================================================================================
info: Input file: /conf/Streams/b.bit
info: MD5 message digest: fedcba9876543210
info: MD5 digest does not match the reference MD5 digest
info: Input file: /conf/Streams/c.bit
error: decode failed
info: Input file: /conf/Streams/d.bit
info: MD5 message digest: 00
info: MD5 digest matches the reference MD5 digest
`

func TestScanConformanceLog(t *testing.T) {
	summary, err := ScanConformanceLog(strings.NewReader(conformanceLog), 4)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Pass)
	assert.Equal(t, 1, summary.Fail)
	assert.Equal(t, 1, summary.Incomplete)
	assert.Equal(t, summary.Total, summary.Pass+summary.Fail+summary.Incomplete)

	assert.Equal(t, []ConformanceResult{
		{Stream: "/conf/Streams/a.bit", Match: true},
		{Stream: "/conf/Streams/b.bit", Match: false},
		{Stream: "/conf/Streams/d.bit", Match: true},
	}, summary.Results)
	assert.Len(t, summary.Lines, 10)
	assert.NotContains(t, strings.Join(summary.Lines, "\n"), "decode failed")
}

func TestScanConformanceLogEmpty(t *testing.T) {
	summary, err := ScanConformanceLog(strings.NewReader(""), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Incomplete)
	assert.Empty(t, summary.Rows())
}

func TestWriteConformanceLog(t *testing.T) {
	summary, err := ScanConformanceLog(strings.NewReader(conformanceLog), 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conformance.log")
	require.NoError(t, WriteConformanceLog(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "=========================\nConformance test results\n"))
	assert.Contains(t, out, "Conformance test result summary on the 4 streams:")
	assert.Contains(t, out, "The number of passing streams is 2")
	assert.Contains(t, out, "The number of failing streams is 1")
	assert.Contains(t, out, "did not finish decoding is 1")
}

func TestConformanceRows(t *testing.T) {
	s := ConformanceSummary{Results: []ConformanceResult{{Stream: "a", Match: true}, {Stream: "b"}}}
	assert.Equal(t, [][]string{{"a", "PASS"}, {"b", "FAIL"}}, s.Rows())
}
