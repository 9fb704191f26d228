package deployment

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/arthur-debert/punktf/pkg/types"
)

// Deployment is the immutable record of a finished run.
type Deployment struct {
	timeStart  time.Time
	timeEnd    time.Time
	status     DeploymentStatus
	items      ledger
	superseded []Superseded
}

// Counts summarizes a ledger by status.
type Counts struct {
	Success    int `json:"success" yaml:"success"`
	Failed     int `json:"failed" yaml:"failed"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Superseded int `json:"superseded" yaml:"superseded"`
}

func (d *Deployment) TimeStart() time.Time { return d.timeStart }
func (d *Deployment) TimeEnd() time.Time   { return d.timeEnd }

// Duration is the wall time of the run.
func (d *Deployment) Duration() time.Duration {
	return d.timeEnd.Sub(d.timeStart)
}

func (d *Deployment) Status() DeploymentStatus { return d.status }

// Paths returns all ledger paths in lexical order.
func (d *Deployment) Paths() []string {
	paths := make([]string, 0, len(d.items))
	for p := range d.items {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the raw entry for path.
func (d *Deployment) Get(path string) (Item, bool) {
	return d.items.get(path)
}

// Len returns the number of ledger entries.
func (d *Deployment) Len() int {
	return len(d.items)
}

// Item resolves path to its owning dotfile regardless of status.
func (d *Deployment) Item(path string) (types.Dotfile, bool) {
	return d.items.resolve(path, false)
}

// DeployedItem resolves path only if the whole chain was deployed.
func (d *Deployment) DeployedItem(path string) (types.Dotfile, bool) {
	return d.items.resolve(path, true)
}

// Priority returns the priority of the dotfile deployed at path.
func (d *Deployment) Priority(path string) (*types.Priority, bool) {
	return d.items.priority(path)
}

// IsDeployed reports whether the entry at path succeeded.
func (d *Deployment) IsDeployed(path string) (deployed bool, known bool) {
	return d.items.isDeployed(path)
}

// Superseded lists entries that lost their target to a higher-priority one.
func (d *Deployment) Superseded() []Superseded {
	return append([]Superseded(nil), d.superseded...)
}

// HasFailures reports whether the run failed or any ledger item failed.
// Superseded entries do not count.
func (d *Deployment) HasFailures() bool {
	if d.status.IsFailed() {
		return true
	}
	for _, item := range d.items {
		if item.Status.IsFailed() {
			return true
		}
	}
	return false
}

// Counts tallies ledger items by status.
func (d *Deployment) Counts() Counts {
	c := Counts{Superseded: len(d.superseded)}
	for _, item := range d.items {
		switch item.Status.Kind {
		case KindSuccess:
			c.Success++
		case KindFailed:
			c.Failed++
		case KindSkipped:
			c.Skipped++
		}
	}
	return c
}

// record is the serialized form of a Deployment.
type record struct {
	TimeStart  time.Time        `json:"time_start" yaml:"time_start"`
	TimeEnd    time.Time        `json:"time_end" yaml:"time_end"`
	Status     DeploymentStatus `json:"status" yaml:"status"`
	Counts     Counts           `json:"counts" yaml:"counts"`
	Items      map[string]Item  `json:"items" yaml:"items"`
	Superseded []Superseded     `json:"superseded,omitempty" yaml:"superseded,omitempty"`
}

func (d *Deployment) record() record {
	return record{
		TimeStart:  d.timeStart,
		TimeEnd:    d.timeEnd,
		Status:     d.status,
		Counts:     d.Counts(),
		Items:      d.items,
		Superseded: d.superseded,
	}
}

// MarshalJSON implements json.Marshaler.
func (d *Deployment) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.record())
}

// MarshalYAML implements yaml.Marshaler.
func (d *Deployment) MarshalYAML() (interface{}, error) {
	return d.record(), nil
}
