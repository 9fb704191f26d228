// Package types defines the domain types shared by the profile resolver,
// the execution engine and the deployment ledger: dotfile entries, target
// descriptors, priorities, merge strategies and the filesystem interface.
package types
