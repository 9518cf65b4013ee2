package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.ObservationsLoaded(42)
	r.FramesBuilt(3)
	r.FrameRendered(10 * time.Millisecond)
	r.FrameRendered(20 * time.Millisecond)
	r.Failed("render")

	assert.Equal(t, 42.0, testutil.ToFloat64(r.observations))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.framesBuilt))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.framesRendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("render")))

	path := filepath.Join(t.TempDir(), "fundrace.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fundrace_frames_rendered_total 2")
	assert.Contains(t, string(data), "fundrace_frame_render_seconds_count 2")
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.ObservationsLoaded(1)
	r.FramesBuilt(1)
	r.FrameRendered(time.Second)
	r.Failed("load")
	assert.NoError(t, r.WriteTextfile("ignored.prom"))
}
