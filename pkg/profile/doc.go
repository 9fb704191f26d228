// Package profile loads profile layers and merges them into the effective
// profile that drives one deployment run.
//
// Layers are ordered highest priority first. A typical run stacks a
// pseudo-layer for the --target flag, then the named profile followed by its
// imports (pre-order, depth-first), then a pseudo-layer for the
// PUNKTF_TARGET environment fallback. The first layer that defines the
// target wins, variables are shadowed key by key, and dotfile lists are
// concatenated with duplicates removed.
package profile
