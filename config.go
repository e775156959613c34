package beamgo

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the decoder options.
// Zero values mean "use the default".
type Config struct {
	// StackCapacity is the per-bucket beam size. Negative means unbounded.
	StackCapacity int `yaml:"stack_capacity"`
	// BeamMargin is the score margin below the bucket best that is kept.
	// Zero disables the threshold.
	BeamMargin float32 `yaml:"beam_margin"`
	// MemoryLimitBytes caps the arena memory reserved by open sessions.
	// Chunks held by idle pooled arenas are not counted.
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
	// MaxWorkers bounds the sessions decoded concurrently by DecodeBatch.
	MaxWorkers int `yaml:"max_workers"`
	// ArcLogging records recombined hypotheses as alternatives.
	ArcLogging *bool `yaml:"arc_logging"`
	// RecyclerCap bounds the free-slot list of each session.
	RecyclerCap int `yaml:"recycler_cap"`
	// ChunkSlots is the number of hypotheses per arena chunk.
	ChunkSlots int `yaml:"chunk_slots"`
}

// Validate reports out-of-range values.
func (c Config) Validate() error {
	switch {
	case c.BeamMargin < 0:
		return fmt.Errorf("%w: beam_margin %v < 0", ErrInvalidConfig, c.BeamMargin)
	case c.MemoryLimitBytes < 0:
		return fmt.Errorf("%w: memory_limit_bytes %d < 0", ErrInvalidConfig, c.MemoryLimitBytes)
	case c.MaxWorkers < 0:
		return fmt.Errorf("%w: max_workers %d < 0", ErrInvalidConfig, c.MaxWorkers)
	case c.RecyclerCap < 0:
		return fmt.Errorf("%w: recycler_cap %d < 0", ErrInvalidConfig, c.RecyclerCap)
	case c.ChunkSlots < 0:
		return fmt.Errorf("%w: chunk_slots %d < 0", ErrInvalidConfig, c.ChunkSlots)
	}
	return nil
}

// LoadConfig decodes and validates a YAML configuration.
// Unknown fields are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
