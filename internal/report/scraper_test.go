package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBlock(file, codec, depth, frames, ms, fps string) string {
	return fmt.Sprintf(`info: Input file: %s
info: Using GPU device 0 - AMD Radeon Graphics[gfx1030] on PCI bus 0d:00.0
info: decoding started, please wait!
Input Video Information
	Codec        : %s
	Sequence     : Progressive
	Coded size   : [1920, 1088]
	Display area : [0, 0, 1920, 1080]
	Chroma       : 4:2:0
	Bit depth    : %s
Video Decoding Params:
	Num Surfaces : 6

info: Total pictures decoded: %s
info: avg decoding time per picture: %s
info: avg decode FPS: %s
`, file, codec, depth, frames, ms, fps)
}

func TestParseDecodeLogEmitsOneRecordPerBlock(t *testing.T) {
	log := decodeBlock("/data/a.mp4", "HEVC", "8", "300", "0.81", "1234.5") +
		"\n\n" + decodeBlock("/data/b.mp4", "AVC", "10", "120", "1.2", "833.3") +
		decodeBlock("/data/c.ivf", "AV1", "8", "60", "2.5", "400")

	results, err := ParseDecodeLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, DecodeResult{
		FileName:       "/data/a.mp4",
		Codec:          "HEVC",
		BitDepth:       "8",
		TotalFrames:    "300",
		AvgFrameTimeMs: "0.81",
		AvgFPS:         "1234.5",
	}, results[0])
	assert.Equal(t, "AVC", results[1].Codec)
	assert.Equal(t, "10", results[1].BitDepth)
	assert.Equal(t, "/data/c.ivf", results[2].FileName)
	assert.Equal(t, "400", results[2].AvgFPS)
}

func TestParseDecodeLogAlternateMarkers(t *testing.T) {
	log := `info: Input file: clip.mp4
info: Number of threads: 4
info: Video codec format: HEVC
info: Video Bit depth: 10
info: Total frame decoded: 500
info: avg decoding time per frame (ms): 0.5
info: avg FPS: 2000
`
	results, err := ParseDecodeLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, DecodeResult{
		FileName:       "clip.mp4",
		Threads:        "4",
		Codec:          "HEVC",
		BitDepth:       "10",
		TotalFrames:    "500",
		AvgFrameTimeMs: "0.5",
		AvgFPS:         "2000",
	}, results[0])
}

func TestScraperStates(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []string // file names of emitted records
	}{
		{
			name:     "terminal marker while awaiting is ignored",
			lines:    []string{"info: avg decode FPS: 10"},
			expected: nil,
		},
		{
			name:     "unfinished block is dropped when the next input starts",
			lines:    []string{"info: Input file: crashed.mp4", "\tCodec        : HEVC", "info: Input file: ok.mp4", "info: avg decode FPS: 5"},
			expected: []string{"ok.mp4"},
		},
		{
			name:     "field marker without input file still accumulates",
			lines:    []string{"\tCodec        : AVC", "info: avg decode FPS: 5"},
			expected: []string{""},
		},
		{
			name:     "unrecognized lines ignored",
			lines:    []string{"random noise", "error: something", "info: decoding started, please wait!"},
			expected: nil,
		},
		{
			name:     "trailing partial record not emitted",
			lines:    []string{"info: Input file: a.mp4", "info: avg decode FPS: 5", "info: Input file: b.mp4", "info: Total pictures decoded: 3"},
			expected: []string{"a.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScraper()
			for _, line := range tt.lines {
				s.Feed(line)
			}
			var names []string
			for _, r := range s.Results() {
				names = append(names, r.FileName)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestScraperResetsFieldsBetweenRecords(t *testing.T) {
	s := NewScraper()
	for _, line := range strings.Split(decodeBlock("a.mp4", "HEVC", "8", "10", "1", "100"), "\n") {
		s.Feed(line)
	}
	s.Feed("info: Input file: b.mp4")
	s.Feed("info: avg decode FPS: 50")

	results := s.Results()
	require.Len(t, results, 2)
	assert.Empty(t, results[1].Codec)
	assert.Empty(t, results[1].TotalFrames)
}
