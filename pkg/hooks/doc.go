// Package hooks runs profile pre- and post-hook commands.
//
// Commands are interpreted in-process by mvdan.cc/sh, so hooks behave the
// same on every platform and never depend on a system shell being present.
package hooks
