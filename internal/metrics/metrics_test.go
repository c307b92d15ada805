package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCodecMetricsCounters(t *testing.T) {
	m := NewCodecMetrics(prometheus.NewRegistry())

	m.ObserveEncode(CodecFast, 100)
	m.ObserveEncode(CodecFast, 50)
	m.ObserveDecode(CodecFast, nil)
	m.ObserveDecode(CodecFast, errors.New("boom"))
	m.ObserveGC(3)
	m.ObserveGC(0)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.encoded.WithLabelValues(CodecFast)))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.encodedBytes.WithLabelValues(CodecFast)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decoded.WithLabelValues(CodecFast)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeFailures.WithLabelValues(CodecFast)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.gcReleased))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *CodecMetrics

	assert.NotPanics(t, func() {
		m.ObserveEncode(CodecNetwork, 1)
		m.ObserveDecode(CodecNetwork, nil)
		m.ObserveGC(1)
		m.ObserveHandoff("sent")
		m.ObserveCache(true)
	})
}
