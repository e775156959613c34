package beamgo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
stack_capacity: 50
beam_margin: 4.5
memory_limit_bytes: 1048576
max_workers: 8
arc_logging: false
recycler_cap: 1024
chunk_slots: 256
`))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.StackCapacity)
	assert.InDelta(t, 4.5, cfg.BeamMargin, 1e-6)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimitBytes)
	assert.Equal(t, 8, cfg.MaxWorkers)
	require.NotNil(t, cfg.ArcLogging)
	assert.False(t, *cfg.ArcLogging)
	assert.Equal(t, 1024, cfg.RecyclerCap)
	assert.Equal(t, 256, cfg.ChunkSlots)
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "beam_size: 10\n"},
		{"negative margin", "beam_margin: -1\n"},
		{"negative workers", "max_workers: -2\n"},
		{"negative memory", "memory_limit_bytes: -5\n"},
		{"bad type", "stack_capacity: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestWithConfig(t *testing.T) {
	off := false
	o := applyOptions([]Option{WithConfig(Config{
		StackCapacity: -1,
		BeamMargin:    2,
		MaxWorkers:    4,
		ArcLogging:    &off,
	})})

	assert.Equal(t, -1, o.policy.Capacity)
	require.NotNil(t, o.policy.Threshold)
	assert.InDelta(t, 3.0, o.policy.Threshold(5), 1e-6)
	assert.Equal(t, 4, o.maxWorkers)
	assert.False(t, o.arcLogging)
	assert.Equal(t, DefaultRecyclerCap, o.recyclerCap)

	// Zero values keep the defaults.
	o = applyOptions([]Option{WithConfig(Config{})})
	assert.Equal(t, 100, o.policy.Capacity)
	assert.Nil(t, o.policy.Threshold)
	assert.True(t, o.arcLogging)
}

func TestApplyOptions_NilValues(t *testing.T) {
	o := applyOptions([]Option{nil, WithLogger(nil), WithMetricsCollector(nil), WithEquivalence(nil)})
	assert.NotNil(t, o.logger)
	assert.NotNil(t, o.metricsCollector)
	assert.NotNil(t, o.equivalence)
}
