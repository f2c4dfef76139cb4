package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncCreated("North Zone")
	m.IncCreated("North Zone")
	m.IncUpdated()
	m.IncDeleted()
	m.IncRejected("create", ReasonConflict)
	m.ObserveStore("insert", time.Now())
	m.ObserveListed(3)
	m.IncExported()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsCreated.WithLabelValues("North Zone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("create", ReasonConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsExported))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StoreDuration))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
