package types

import (
	"path/filepath"
)

// Priority breaks ties between dotfiles that resolve to the same target.
// Higher wins.
type Priority int

// NewPriority returns a pointer to p, for optional priority fields.
func NewPriority(p int) *Priority {
	v := Priority(p)
	return &v
}

// Outranks reports whether a is strictly higher than b.
// An absent priority ranks below every present one.
func Outranks(a, b *Priority) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}

// Target describes where a dotfile is deployed. Path is an absolute
// destination used as is. Alias replaces the dotfile's relative path
// below the profile's target root. At most one is set.
type Target struct {
	Path  string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty" mapstructure:"alias"`
}

// Dotfile is one configured mapping from a file or directory below the
// source's dotfiles directory to a deployment target.
type Dotfile struct {
	Path      string            `json:"path" yaml:"path" mapstructure:"path"`
	Target    *Target           `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Priority  *Priority         `json:"priority,omitempty" yaml:"priority,omitempty" mapstructure:"priority"`
	Merge     *MergeStrategy    `json:"merge,omitempty" yaml:"merge,omitempty" mapstructure:"merge"`
	Template  bool              `json:"template,omitempty" yaml:"template,omitempty" mapstructure:"template"`
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

// MergeOr returns the dotfile's merge strategy, or def when it has none.
func (d Dotfile) MergeOr(def MergeStrategy) MergeStrategy {
	if d.Merge != nil {
		return *d.Merge
	}
	return def
}

// TargetPath resolves the absolute deploy path of the dotfile below root.
// It returns "" when neither an absolute override nor a root is available.
func (d Dotfile) TargetPath(root string) string {
	if d.Target != nil && d.Target.Path != "" {
		return filepath.Clean(d.Target.Path)
	}
	if root == "" {
		return ""
	}
	rel := d.Path
	if d.Target != nil && d.Target.Alias != "" {
		rel = d.Target.Alias
	}
	return filepath.Join(root, rel)
}

// SameEntry reports whether two dotfiles name the same source and target,
// ignoring priority, merge strategy and variables.
func (d Dotfile) SameEntry(other Dotfile) bool {
	if filepath.Clean(d.Path) != filepath.Clean(other.Path) {
		return false
	}
	var a, b Target
	if d.Target != nil {
		a = *d.Target
	}
	if other.Target != nil {
		b = *other.Target
	}
	return a == b
}
