// Package database persists audit results.
//
// Store has three implementations:
//   - MemoryStore keeps audits in process memory
//   - AuditDB writes a single SQLite file (modernc.org/sqlite, CGO-free, WAL)
//   - RedisStore shares history between server replicas
//
// Every store assigns increasing ids, lists the newest audits first and
// returns copies, so callers never alias stored state.
package database
