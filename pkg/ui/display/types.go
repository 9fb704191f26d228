// Package display holds the renderer-neutral view of command results.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/punktf/pkg/deployment"
	"github.com/arthur-debert/punktf/pkg/profile"
	"github.com/arthur-debert/punktf/pkg/types"
)

// StatusSuperseded labels rows for dotfiles that lost their target.
const StatusSuperseded = "superseded"

// DeployResult is the outcome of the deploy command.
type DeployResult struct {
	Profile    string                 `json:"profile" yaml:"profile"`
	Source     string                 `json:"source" yaml:"source"`
	Target     string                 `json:"target" yaml:"target"`
	DryRun     bool                   `json:"dry_run" yaml:"dry_run"`
	Deployment *deployment.Deployment `json:"deployment" yaml:"deployment"`
}

// ProfileResult is the outcome of the profile show command.
type ProfileResult struct {
	Source  string             `json:"source" yaml:"source"`
	Profile *profile.Effective `json:"profile" yaml:"profile"`
}

// ProfileList is the outcome of the profile list command.
type ProfileList struct {
	Source   string   `json:"source" yaml:"source"`
	Profiles []string `json:"profiles" yaml:"profiles"`
}

// Row is one line of a deployment report.
type Row struct {
	Target  string
	Kind    string
	Status  string
	Reason  string
	Dotfile string
	Parent  string
}

// Rows flattens a deployment into report rows: ledger entries in path order
// followed by superseded entries in the order they were recorded.
func Rows(d *deployment.Deployment) []Row {
	rows := make([]Row, 0, d.Len()+len(d.Superseded()))
	for _, path := range d.Paths() {
		item, _ := d.Get(path)
		row := Row{
			Target: path,
			Kind:   string(item.Kind),
			Status: string(item.Status.Kind),
			Reason: item.Status.Reason,
			Parent: item.Parent,
		}
		if owner, ok := d.Item(path); ok {
			row.Dotfile = owner.Path
		}
		rows = append(rows, row)
	}

	superseded := append([]deployment.Superseded(nil), d.Superseded()...)
	sort.SliceStable(superseded, func(i, j int) bool { return superseded[i].Target < superseded[j].Target })
	for _, s := range superseded {
		rows = append(rows, Row{
			Target:  s.Target,
			Kind:    StatusSuperseded,
			Status:  StatusSuperseded,
			Reason:  s.Status.Reason,
			Dotfile: s.Dotfile.Path,
			Parent:  s.Parent,
		})
	}
	return rows
}

// Summary is the one-line tally printed after a deployment.
func Summary(d *deployment.Deployment, dryRun bool) string {
	c := d.Counts()
	verb := "deployed"
	if dryRun {
		verb = "would deploy"
	}
	return fmt.Sprintf("%d %s, %d skipped, %d failed, %d superseded in %s",
		c.Success, verb, c.Skipped, c.Failed, c.Superseded, d.Duration().Round(time.Millisecond))
}

// SortedKeys returns the keys of m in order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DotfileLine describes a configured dotfile and where it deploys to.
func DotfileLine(d types.Dotfile, root string) string {
	target := d.TargetPath(root)
	if target == "" {
		target = "(no target)"
	}
	line := fmt.Sprintf("%s -> %s", d.Path, target)

	var attrs []string
	if d.Priority != nil {
		attrs = append(attrs, fmt.Sprintf("priority %d", *d.Priority))
	}
	if d.Merge != nil {
		attrs = append(attrs, "merge "+d.Merge.String())
	}
	if d.Template {
		attrs = append(attrs, "template")
	}
	if len(attrs) > 0 {
		line += " [" + strings.Join(attrs, ", ") + "]"
	}
	return line
}
