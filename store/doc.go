// Package store provides a single-table DynamoDB data access layer with
// denormalized entity storage, optimistic concurrency and aggregate
// assembly.
//
// Every domain object is an [Entity]: it derives its own partition/sort
// key, declares its serializable fields, and may opt into capabilities via
// further interfaces — [Versioned] for optimistic concurrency, [Indexed]
// for secondary-index projection, [Assembler] for aggregates reconstructed
// from a family of denormalized sibling rows.
//
// # Write paths
//
//   - [Store.Upsert] — conditional create-or-update of one entity with
//     set-once field semantics.
//   - [Store.BatchWrite] — unconditional bulk inserts, chunked to the
//     store's 25-item limit, with unprocessed-item reporting.
//   - [Store.TransactUpsert] — all-or-nothing (per chunk) conditional
//     mutation of several entities, with atomic ADD counters and rich
//     per-item failure classification. Business failures are returned in
//     the [TransactResult], never raised: callers report partial success
//     without exception-driven control flow.
//
// # Read paths
//
// [Store.QueryOne], [Store.QueryList] and [Store.QueryAssemble] run one
// key-condition query (optionally against a secondary index) and validate
// rows into typed entities; QueryAssemble merges a whole row family into
// one aggregate using the root's [RelatedSpec] declarations.
//
// # Concurrency
//
// The store holds no in-process locks and no cache. Correctness under
// concurrent writers comes from the storage primitives alone: version
// conditions for same-entity updates, atomic ADD deltas for shared
// counters, transactions for cross-entity invariants.
//
// # Errors
//
// The package defines a small taxonomy callers branch on:
//
//   - [ErrNotFound] — missing row or missing aggregate root
//   - [ErrConditionFailed] — a non-versioning precondition failed
//   - [ErrThrottled] — transient capacity limiting; retry with backoff
//   - [VersionConflictError] — stale writer; re-read and retry
//   - [InvalidConfigurationError] — programming error; never handle
//     generically
package store
