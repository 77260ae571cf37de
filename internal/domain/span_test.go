package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	profile, endProfile := NewProfile()
	ctx := NewCtxWithProfile(context.Background(), profile)

	_, endSpan := GetProfile(ctx).StartNewSpan("validate snapshot")
	endSpan()
	endSpan()
	endProfile()

	require.Len(t, profile.Spans, 1)
	require.NotNil(t, profile.Spans[0].Elapsed)
	require.NotNil(t, profile.TotalUs)

	out, err := profile.ToJsonBytes()
	require.NoError(t, err)
	decoded := []map[string]any{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "validate snapshot", decoded[0]["name"])
	require.Contains(t, decoded[0], "elapsedMicros")
}

func TestGetProfileWithoutContextValue(t *testing.T) {
	profile := GetProfile(context.Background())
	require.NotNil(t, profile)
	_, endSpan := profile.StartNewSpan("detached")
	endSpan()
}
