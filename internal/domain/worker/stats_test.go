package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	got, err := Stats(context.Background(), json.RawMessage(`[2, 4, 4, 4, 5, 5, 7, 9]`))
	require.NoError(t, err)

	s := got.(Summary)
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 40, s.Sum, 1e-9)
	assert.InDelta(t, 5, s.Mean, 1e-9)
	assert.InDelta(t, 4.5, s.Median, 1e-9)
	assert.InDelta(t, 2, s.Min, 1e-9)
	assert.InDelta(t, 9, s.Max, 1e-9)
	assert.InDelta(t, 2.138, s.StdDev, 1e-3)
}

func TestStatsMedian(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
	}{
		{"single", `[3]`, 3},
		{"odd", `[9, 1, 5]`, 5},
		{"even", `[4, 1, 3, 2]`, 2.5},
		{"even with repeats", `[2, 4, 4, 4, 5, 5, 7, 9]`, 4.5},
		{"negative", `[-3, -1]`, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stats(context.Background(), json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.(Summary).Median, 1e-9)
		})
	}
}

func TestStatsSingleSample(t *testing.T) {
	got, err := Stats(context.Background(), json.RawMessage(`[3]`))
	require.NoError(t, err)

	s := got.(Summary)
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 3, s.Median, 1e-9)
	assert.Zero(t, s.StdDev)
}

func TestStatsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty array", `[]`},
		{"not an array", `{"n":1}`},
		{"strings", `["a","b"]`},
		{"missing", ``},
		{"too many", "[" + strings.TrimSuffix(strings.Repeat("1,", MaxSamples+1), ",") + "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Stats(context.Background(), json.RawMessage(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestStatsThroughPool(t *testing.T) {
	pool := NewPool(1, BuiltinTasks(0))
	defer pool.Destroy()

	raw, err := pool.Run(context.Background(), TaskStats, []float64{1, 2, 3})
	require.NoError(t, err)

	var s Summary
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2, s.Mean, 1e-9)
}
