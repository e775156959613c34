// Package resource implements the Controller for decoder-wide limits.
//
// The Controller provides centralized management of two resource types:
//
//   - Memory: Track and limit hypothesis arena memory (non-blocking, fail-fast)
//   - Workers: Limit the number of sessions decoded concurrently
//
// # Architecture
//
//	┌───────────────────────────────────────────┐
//	│                Controller                 │
//	├─────────────────────┬─────────────────────┤
//	│  Memory Limit       │  Workers (sem)      │
//	│  (fail-fast)        │                     │
//	├─────────────────────┼─────────────────────┤
//	│  AcquireMemory      │  AcquireWorker      │
//	│  (non-blocking)     │  TryAcquireWorker   │
//	│  ReleaseMemory      │  ReleaseWorker      │
//	│  MemoryUsage        │                     │
//	└─────────────────────┴─────────────────────┘
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded. Retrying cannot
// succeed until another session releases its arena, so callers do not retry:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(chunkBytes); err != nil {
//	    // ErrMemoryLimitExceeded - fail the session
//	}
//	defer rc.ReleaseMemory(chunkBytes)
//
// # Worker Limits
//
// Limits concurrently decoded sessions:
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
