package probe_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/recorder/lib/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const output = `{
    "streams": [
        {
            "index": 0,
            "codec_name": "h264",
            "codec_type": "video",
            "width": 1280,
            "height": 720,
            "display_aspect_ratio": "16:9"
        }
    ],
    "format": {
        "filename": "out.mp4",
        "nb_streams": 1,
        "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
        "duration": "2.040000",
        "size": "48213"
    }
}`

func TestParse(t *testing.T) {
	res, err := probe.Parse([]byte(output))
	require.NoError(t, err)

	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", res.Format)
	assert.Equal(t, 2040*time.Millisecond, res.Duration)
	assert.Equal(t, "h264", res.Codec)
	assert.Equal(t, 1280, res.Width)
	assert.Equal(t, 720, res.Height)
}

func TestParseErrors(t *testing.T) {
	_, err := probe.Parse([]byte("{"))
	assert.Error(t, err)

	_, err = probe.Parse([]byte(`{"streams":[]}`))
	assert.Error(t, err)

	res, err := probe.Parse([]byte(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"1.5"}}`))
	assert.Error(t, err)
	assert.Equal(t, 1500*time.Millisecond, res.Duration)
}

func TestBin(t *testing.T) {
	assert.Equal(t, "ffprobe", probe.Bin("ffmpeg"))
	assert.Equal(t, filepath.Join("/opt/homebrew/bin", "ffprobe"), probe.Bin("/opt/homebrew/bin/ffmpeg"))
	assert.Equal(t, filepath.Join("bin", "ffprobe"), probe.Bin(filepath.Join("bin", "ffmpeg")))
}

func TestRunMissingBinary(t *testing.T) {
	_, err := probe.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), "out.mp4")
	assert.Error(t, err)
}
