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

func TestRecordSelection(t *testing.T) {
	before := testutil.ToFloat64(Selections.WithLabelValues("applied"))
	RecordSelection("applied")
	RecordSelection("applied")
	assert.Equal(t, before+2, testutil.ToFloat64(Selections.WithLabelValues("applied")))
}

func TestRecordFetch(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"error", errors.New("connection refused"), "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.CollectAndCount(FetchDuration)
			RecordFetch("test-"+tc.name, 5*time.Millisecond, tc.err)
			assert.Equal(t, before+1, testutil.CollectAndCount(FetchDuration))
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/state", "200"))
	RecordAPIRequest("GET", "/api/state", "200", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/state", "200")))
}

func TestMetricGathering(t *testing.T) {
	RecordSelection("failed")
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	require.NoError(t, err)
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}
}
