package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("agentbridge", reg)

	c.RecordLLMRequest("gemini", "gemini-2.5-flash", "success", 250*time.Millisecond)
	c.RecordLLMRequest("gemini", "gemini-2.5-flash", "error", time.Second)
	c.RecordTokens("gemini", "gemini-2.5-flash", "prompt", 120)
	c.RecordToolExecution("get_users", "success", 10*time.Millisecond)
	c.RecordRun("helper", "success", 2*time.Second)
	c.SessionOpened()

	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.llmRequestsTotal.WithLabelValues("gemini", "gemini-2.5-flash", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.llmRequestsTotal.WithLabelValues("gemini", "gemini-2.5-flash", "error")))
	assert.Equal(t, float64(120), testutil.ToFloat64(
		c.llmTokensUsed.WithLabelValues("gemini", "gemini-2.5-flash", "prompt")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.toolExecutionsTotal.WithLabelValues("get_users", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.runsTotal.WithLabelValues("helper", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsActive))

	c.SessionClosed()
	assert.Equal(t, float64(0), testutil.ToFloat64(c.sessionsActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
