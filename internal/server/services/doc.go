// Package services contains the ledger's business logic: the category
// lifecycle, the entry synchronizer that reconciles client batches against
// the store, and the aggregation engine that sums prices over time windows.
//
// Every operation takes an already-resolved owner. Mutating operations run in
// one transaction per call and serialize on a per-owner advisory lock, so
// check-then-write sequences are atomic against concurrent calls of the same
// owner while disjoint owners never block each other.
package services
