package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.FrameRead()
	c.FrameRead()
	c.FrameSampled()
	c.FrameDropped()
	c.QueueDepth(3)
	c.ClassificationSkipped("emotion")
	c.LabelRecorded(domain.LabelSad)
	c.LabelRecorded(domain.LabelSad)

	assert.Equal(t, uint64(2), c.FramesRead.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.skipped.WithLabelValues("emotion")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.labels.WithLabelValues("sad")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.labels.WithLabelValues("focused")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.FrameRead()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "mclass_frames_read_total 1"), string(body))
	assert.True(t, strings.Contains(string(body), `mclass_label_events_total{label="using_phone"} 0`))
}
