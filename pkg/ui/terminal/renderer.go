// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/ui/display"
	"github.com/arthur-debert/punktf/pkg/ui/styles"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output: lipgloss styled headings and a
// pterm table for the deployment ledger.
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// StatusStyle returns the pterm style for a report row status.
func StatusStyle(status string) *pterm.Style {
	switch status {
	case "success":
		return pterm.NewStyle(pterm.FgGreen)
	case "failed":
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case "skipped":
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.DeployResult:
		return r.renderDeploy(v)
	case *display.ProfileResult:
		return r.renderProfile(v)
	case *display.ProfileList:
		var b strings.Builder
		for _, name := range v.Profiles {
			fmt.Fprintf(&b, "%s %s\n", pterm.Info.Prefix.Text, styles.Render("Bold", name))
		}
		return r.write(b.String())
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderDeploy(v *display.DeployResult) error {
	var b strings.Builder

	header := fmt.Sprintf("Deploying %s to %s", v.Profile, v.Target)
	if v.DryRun {
		header += " (dry run)"
	}
	b.WriteString(styles.Render("Header", header))
	b.WriteString("\n")

	rows := display.Rows(v.Deployment)
	if len(rows) > 0 {
		data := pterm.TableData{{"Status", "Target", "Dotfile", "Reason"}}
		for _, row := range rows {
			data = append(data, []string{
				StatusStyle(row.Status).Sprint(row.Status),
				styles.Render("FilePath", row.Target),
				row.Dotfile,
				styles.Render("Muted", row.Reason),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		b.WriteString(table)
		b.WriteString("\n")
	}

	if status := v.Deployment.Status(); status.IsFailed() {
		b.WriteString(styles.Render("Error", "Deployment failed: "+status.Reason))
		b.WriteString("\n")
	}
	summaryStyle := "Success"
	if v.Deployment.HasFailures() {
		summaryStyle = "Warning"
	}
	b.WriteString(styles.GetStyle("Summary").Inherit(styles.GetStyle(summaryStyle)).Render(display.Summary(v.Deployment, v.DryRun)))
	b.WriteString("\n")

	return r.write(b.String())
}

func (r *Renderer) renderProfile(v *display.ProfileResult) error {
	p := v.Profile
	var b strings.Builder

	b.WriteString(styles.Render("Header", "Profile "+p.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", styles.Render("Bold", "Layers:"), strings.Join(p.Layers, styles.Render("Muted", " > ")))
	if p.HasTarget() {
		fmt.Fprintf(&b, "%s %s %s\n", styles.Render("Bold", "Target:"),
			styles.Render("FilePath", p.Target), styles.Render("Muted", "from "+p.TargetFrom))
	} else {
		fmt.Fprintf(&b, "%s %s\n", styles.Render("Bold", "Target:"), styles.Render("Warning", "none"))
	}

	if len(p.Variables) > 0 {
		b.WriteString(styles.Render("Bold", "Variables:") + "\n")
		for _, k := range display.SortedKeys(p.Variables) {
			fmt.Fprintf(&b, "  %s = %s\n", styles.Render("Info", k), p.Variables[k])
		}
	}
	b.WriteString(styles.Render("Bold", "Dotfiles:") + "\n")
	for _, d := range p.Dotfiles {
		fmt.Fprintf(&b, "  %s\n", display.DotfileLine(d, p.Target))
	}
	for _, section := range []struct {
		title string
		items []string
	}{{"Pre-hooks:", p.PreHooks}, {"Post-hooks:", p.PostHooks}} {
		if len(section.items) == 0 {
			continue
		}
		b.WriteString(styles.Render("Bold", section.title) + "\n")
		for _, item := range section.items {
			fmt.Fprintf(&b, "  %s\n", styles.Render("Muted", item))
		}
	}
	return r.write(b.String())
}

// RenderError renders an error with its code when it has one.
func (r *Renderer) RenderError(err error) error {
	msg := err.Error()
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg = fmt.Sprintf("[%s] %s", code, msg)
	}
	return r.write(fmt.Sprintf("%s %s\n", pterm.Error.Prefix.Text, styles.Render("Error", msg)))
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.write(fmt.Sprintf("%s %s\n", pterm.Info.Prefix.Text, msg))
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.output, s)
	return err
}
