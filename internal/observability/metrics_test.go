package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/config"
	"github.com/auditkit/revision-service/internal/observability"
)

func TestMetrics(t *testing.T) {
	t.Run("nil metrics are a no-op", func(t *testing.T) {
		var m *observability.Metrics
		assert.NotPanics(t, func() {
			m.RecordRequest("/x", "GET", 200, time.Millisecond)
			m.RecordError("/x", "GET", "NOT_FOUND")
			m.RecordSaveDecision("question", "create")
			m.RecordDroppedRevision("invalid")
			m.RecordTableCache("alerts", true)
		})
		assert.Nil(t, m.Registry())
	})

	t.Run("counters are gathered", func(t *testing.T) {
		m, err := observability.NewMetrics()
		require.NoError(t, err)

		m.RecordSaveDecision("question", "update")
		m.RecordSaveDecision("question", "update")
		m.RecordDroppedRevision("no_message")
		m.RecordTableCache("alerts", false)

		count, err := testutil.GatherAndCount(m.Registry(),
			"revision_service_save_decisions_total",
			"revision_service_timeline_dropped_revisions_total",
			"revision_service_audit_table_cache_total",
		)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := observability.NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = observability.NewLogger(config.LoggerConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
