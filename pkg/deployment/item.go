package deployment

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/punktf/pkg/types"
)

// ItemKind distinguishes configured dotfiles from files expanded out of a
// directory dotfile.
type ItemKind string

const (
	KindItem  ItemKind = "item"
	KindChild ItemKind = "child"
)

// Item is a ledger entry. Dotfile is set for KindItem, Parent (the target
// path of the owning directory) for KindChild.
type Item struct {
	Kind    ItemKind       `json:"kind" yaml:"kind"`
	Status  ItemStatus     `json:"status" yaml:"status"`
	Dotfile *types.Dotfile `json:"dotfile,omitempty" yaml:"dotfile,omitempty"`
	Parent  string         `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Superseded records a dotfile that lost its target path to an entry of
// higher (or equal, earlier-declared) priority.
type Superseded struct {
	Target  string        `json:"target" yaml:"target"`
	Dotfile types.Dotfile `json:"dotfile" yaml:"dotfile"`
	Parent  string        `json:"parent,omitempty" yaml:"parent,omitempty"`
	Status  ItemStatus    `json:"status" yaml:"status"`
}

// ledger is the path-keyed item map shared by Builder and Deployment.
type ledger map[string]Item

func key(path string) string {
	return filepath.Clean(path)
}

func (l ledger) get(path string) (Item, bool) {
	item, ok := l[key(path)]
	return item, ok
}

// resolve follows child links from path to the owning item. With
// requireSuccess every visited node must have a success status.
func (l ledger) resolve(path string, requireSuccess bool) (types.Dotfile, bool) {
	value, ok := l.get(path)
	// A well-formed chain visits each entry at most once.
	for steps := 0; ok && steps <= len(l); steps++ {
		if requireSuccess && !value.Status.IsSuccess() {
			return types.Dotfile{}, false
		}
		switch value.Kind {
		case KindItem:
			if value.Dotfile == nil {
				return types.Dotfile{}, false
			}
			return *value.Dotfile, true
		case KindChild:
			value, ok = l.get(value.Parent)
		default:
			return types.Dotfile{}, false
		}
	}
	return types.Dotfile{}, false
}

func (l ledger) priority(path string) (*types.Priority, bool) {
	dotfile, ok := l.resolve(path, true)
	if !ok {
		return nil, false
	}
	return dotfile.Priority, true
}

func (l ledger) isDeployed(path string) (deployed bool, known bool) {
	item, ok := l.get(path)
	if !ok {
		return false, false
	}
	return item.Status.IsSuccess(), true
}

func (l ledger) children(parent string) []string {
	parent = key(parent)
	var paths []string
	for path, item := range l {
		if item.Kind == KindChild && item.Parent == parent {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
