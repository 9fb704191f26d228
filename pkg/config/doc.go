// Package config loads punktf's application settings.
//
// Settings are layered with koanf, lowest priority first:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user file $XDG_CONFIG_HOME/punktf/config.toml (or config.yaml)
//  3. punktf.toml at the root of the dotfiles source tree
//  4. PUNKTF_* environment variables
//  5. explicit overrides, normally command-line flags
//
// Environment variables map onto keys by dropping the prefix, lowercasing
// and splitting the section name: PUNKTF_DEPLOY_DRY_RUN sets deploy.dry_run.
//
// These settings only describe how punktf runs. What gets deployed lives in
// the profiles of the source tree, see package profile.
package config
