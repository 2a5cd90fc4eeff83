package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsSingleton(t *testing.T) {
	a := Get()
	b := Init(nil)
	assert.Same(t, a, b)
}

func TestDownloadCounter(t *testing.T) {
	m := Get()
	before := testutil.ToFloat64(m.DownloadFiles.WithLabelValues(ResultSkipped))
	m.DownloadFiles.WithLabelValues(ResultSkipped).Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(m.DownloadFiles.WithLabelValues(ResultSkipped)))
}
