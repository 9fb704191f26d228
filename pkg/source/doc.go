// Package source locates and validates a punktf source tree.
//
// A source tree is a directory holding two subdirectories: profiles/, with
// one profile document per name, and dotfiles/, with the files profiles
// refer to by relative path.
package source
