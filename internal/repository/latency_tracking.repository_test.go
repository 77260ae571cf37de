package repository

import (
	"portfoliocalc/internal/db/models/postgres/public/table"
	"portfoliocalc/internal/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLatencyTrackingQueries(t *testing.T) {
	profile, endProfile := domain.NewProfile()
	_, endSpan := profile.StartNewSpan("solve rebalance")
	endSpan()
	endProfile()

	requestID := uuid.MustParse("0f6f2b9e-5d0a-4bb4-9a77-2f3c1c0f5e21")
	m, err := newLatencyTracking(profile, requestID, "/calc/rebalance", 200)
	require.NoError(t, err)
	require.Equal(t, int32(200), m.StatusCode)
	require.Contains(t, m.ProcessingTimes, "solve rebalance")

	insert := table.LatencyTracking.
		INSERT(table.LatencyTracking.MutableColumns).
		MODEL(m).
		DebugSql()
	require.Contains(t, insert, "INSERT INTO public.latency_tracking (request_id, route, status_code, processing_times, created_at)")
	require.Contains(t, insert, "'/calc/rebalance'")
}
