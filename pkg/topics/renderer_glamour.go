package topics

import (
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/punktf/pkg/logging"
)

// GlamourRenderer renders markdown topics for the terminal.
type GlamourRenderer struct {
	Style string // "dark", "light", "notty", "auto", or a style file path
	Width int    // 0 keeps glamour's default wrap

	logger zerolog.Logger
}

// NewGlamourRenderer creates a markdown renderer using glamour with auto-detection
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{
		Style:  "auto",
		logger: logging.GetLogger("topics"),
	}
}

// Render converts markdown to styled terminal output. Other formats and
// rendering failures return content unchanged.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Falling back to plain topic output")
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Falling back to plain topic output")
		return content
	}
	return rendered
}
