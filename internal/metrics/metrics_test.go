package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.AuditWrite(nil)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestObserveRemote(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRemote("insert", time.Now(), nil)
	m.ObserveRemote("insert", time.Now(), errors.New("boom"))
	m.ObserveRemote("insert", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteCalls.WithLabelValues("insert", "error")))
}

func TestCounters(t *testing.T) {
	m := New(nil)

	m.AuditWrite(errors.New("offline"))
	m.Resync(nil)
	m.Mutation("archive_report", "not_found")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditWrites.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resyncs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("archive_report", "not_found")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRemote("ping", time.Now(), nil)
		m.AuditWrite(nil)
		m.Resync(nil)
		m.Mutation("x", "ok")
	})
}
