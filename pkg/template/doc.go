// Package template implements the small substitution language used by
// dotfiles marked as templates.
//
// Syntax:
//
//	{{NAME}}       dotfile variable, then profile variable, then environment
//	{{#NAME}}      profile variable only
//	{{$NAME}}      environment variable only
//	{{!-- text --}} comment, dropped from the output
//	{{{ text }}}   emitted verbatim, without substitution
//
//	{{@if {{OS}} == "linux"}}
//	...
//	{{@elif {{OS}} != "windows"}}
//	...
//	{{@else}}
//	...
//	{{@fi}}
//
// A bare {{@if {{NAME}}}} is true when NAME is defined and non-empty.
// Blocks nest. A directive or comment followed directly by a newline
// consumes that newline, so block lines leave no blank lines behind.
package template
