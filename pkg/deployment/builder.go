package deployment

import (
	"time"

	"github.com/arthur-debert/punktf/pkg/types"
)

// Builder accumulates the ledger of one deployment run. It is owned by a
// single run and is not safe for concurrent use.
type Builder struct {
	timeStart  time.Time
	items      ledger
	superseded []Superseded
	now        func() time.Time
}

// NewBuilder starts a new ledger, stamping the start time.
func NewBuilder() *Builder {
	return newBuilder(time.Now)
}

func newBuilder(now func() time.Time) *Builder {
	return &Builder{
		timeStart: now(),
		items:     make(ledger),
		now:       now,
	}
}

// AddItem records a configured dotfile at path, replacing any prior entry.
func (b *Builder) AddItem(path string, dotfile types.Dotfile, status ItemStatus) *Builder {
	d := dotfile
	b.items[key(path)] = Item{Kind: KindItem, Status: status, Dotfile: &d}
	return b
}

// AddChild records a file expanded from the directory deployed at parent,
// replacing any prior entry for path.
func (b *Builder) AddChild(path, parent string, status ItemStatus) *Builder {
	b.items[key(path)] = Item{Kind: KindChild, Status: status, Parent: key(parent)}
	return b
}

// AddSuperseded records a dotfile that lost its target to another entry.
func (b *Builder) AddSuperseded(s Superseded) *Builder {
	s.Target = key(s.Target)
	b.superseded = append(b.superseded, s)
	return b
}

// Remove drops the entry for path, if any.
func (b *Builder) Remove(path string) {
	delete(b.items, key(path))
}

// Contains reports whether path has an entry.
func (b *Builder) Contains(path string) bool {
	_, ok := b.items.get(path)
	return ok
}

// Get returns the raw entry for path.
func (b *Builder) Get(path string) (Item, bool) {
	return b.items.get(path)
}

// Item resolves path to its owning dotfile regardless of status.
func (b *Builder) Item(path string) (types.Dotfile, bool) {
	return b.items.resolve(path, false)
}

// DeployedItem resolves path to its owning dotfile only if every entry on
// the way was deployed successfully.
func (b *Builder) DeployedItem(path string) (types.Dotfile, bool) {
	return b.items.resolve(path, true)
}

// Priority returns the priority of the dotfile deployed at path. The bool
// is false when nothing is deployed there; the priority may still be nil.
func (b *Builder) Priority(path string) (*types.Priority, bool) {
	return b.items.priority(path)
}

// IsDeployed reports whether the entry at path succeeded. known is false
// when there is no entry.
func (b *Builder) IsDeployed(path string) (deployed bool, known bool) {
	return b.items.isDeployed(path)
}

// Children returns the sorted paths of the entries expanded from parent.
func (b *Builder) Children(parent string) []string {
	return b.items.children(parent)
}

// Len returns the number of ledger entries.
func (b *Builder) Len() int {
	return len(b.items)
}

// Success freezes the ledger into a successful Deployment.
func (b *Builder) Success() *Deployment {
	return b.finish(DeploymentStatus{Kind: KindSuccess})
}

// Failed freezes the ledger into a failed Deployment.
func (b *Builder) Failed(reason string) *Deployment {
	return b.finish(DeploymentStatus{Kind: KindFailed, Reason: reason})
}

func (b *Builder) finish(status DeploymentStatus) *Deployment {
	items := make(ledger, len(b.items))
	for k, v := range b.items {
		items[k] = v
	}
	return &Deployment{
		timeStart:  b.timeStart,
		timeEnd:    b.now(),
		status:     status,
		items:      items,
		superseded: append([]Superseded(nil), b.superseded...),
	}
}
