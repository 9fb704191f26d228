// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/punktf/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	var b strings.Builder
	switch v := result.(type) {
	case *display.DeployResult:
		writeDeploy(&b, v)
	case *display.ProfileResult:
		writeProfile(&b, v)
	case *display.ProfileList:
		for _, name := range v.Profiles {
			fmt.Fprintln(&b, name)
		}
	default:
		fmt.Fprintf(&b, "%+v\n", result)
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func writeDeploy(b *strings.Builder, v *display.DeployResult) {
	header := fmt.Sprintf("Deploying profile %s from %s to %s", v.Profile, v.Source, v.Target)
	if v.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintln(b, header)

	for _, row := range display.Rows(v.Deployment) {
		line := fmt.Sprintf("  %-10s %-10s %s", row.Status, row.Kind, row.Target)
		if row.Dotfile != "" {
			line += " (" + row.Dotfile + ")"
		}
		if row.Reason != "" {
			line += ": " + row.Reason
		}
		fmt.Fprintln(b, line)
	}

	if status := v.Deployment.Status(); status.IsFailed() {
		fmt.Fprintf(b, "Deployment failed: %s\n", status.Reason)
	}
	fmt.Fprintln(b, display.Summary(v.Deployment, v.DryRun))
}

func writeProfile(b *strings.Builder, v *display.ProfileResult) {
	p := v.Profile
	fmt.Fprintf(b, "Profile: %s\n", p.Name)
	fmt.Fprintf(b, "Layers: %s\n", strings.Join(p.Layers, ", "))
	if p.HasTarget() {
		fmt.Fprintf(b, "Target: %s (from %s)\n", p.Target, p.TargetFrom)
	} else {
		fmt.Fprintln(b, "Target: none")
	}

	if len(p.Variables) > 0 {
		fmt.Fprintln(b, "Variables:")
		for _, k := range display.SortedKeys(p.Variables) {
			fmt.Fprintf(b, "  %s = %s\n", k, p.Variables[k])
		}
	}
	fmt.Fprintln(b, "Dotfiles:")
	for _, d := range p.Dotfiles {
		fmt.Fprintf(b, "  %s\n", display.DotfileLine(d, p.Target))
	}
	writeList(b, "Pre-hooks", p.PreHooks)
	writeList(b, "Post-hooks", p.PostHooks)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  %s\n", item)
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
