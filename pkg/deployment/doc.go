// Package deployment holds the per-run ledger of deployed items and the
// immutable Deployment record produced when a run finishes.
//
// The ledger is a flat map keyed by absolute target path. Files expanded from
// a directory entry are stored as children that point back at the directory's
// target path instead of duplicating the dotfile, so lookups walk a chain of
// back-references up to the owning item. Walks are bounded by the ledger size
// and report "not found" on a missing link.
package deployment
