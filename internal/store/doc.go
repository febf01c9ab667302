// Package store provides SQLite-backed recording of engine runs.
//
// A trace is append-only and holds:
//   - Runs: one row per engine instance
//   - Frames: one row per processed frame, with its propagation stats
//   - Effects: every outbound view mutation and host event
//
// The store records what the engine did. It does not persist graphs.
//
// # Critical Patterns
//
// Logical ordering:
//   - Frames are keyed by the engine's frame sequence, effects by a per-run
//     emission counter. Wall time is never used for ordering.
//   - All queries include ORDER BY seq ASC.
//
// Canonical payloads:
//   - Effect payloads are stored as canonical JSON (sorted keys, NFC
//     strings), so replaying the same script yields byte-identical rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
