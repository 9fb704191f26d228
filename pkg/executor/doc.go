// Package executor provides the deployment engine for punktf.
//
// The executor walks an effective profile's dotfiles in order, resolves
// each one's target path, settles competition between entries for the
// same path by priority, applies the merge strategy against what already
// exists on disk and records every outcome in a deployment ledger. Per
// item failures are recorded and never stop the run; only a missing
// target root, a failing hook, cancellation or an abort-all answer from
// the conflict resolver end it early.
package executor
