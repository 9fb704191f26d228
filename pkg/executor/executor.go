package executor

import (
	"context"
	"fmt"

	"github.com/arthur-debert/punktf/pkg/deployment"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/hooks"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/profile"
	"github.com/arthur-debert/punktf/pkg/source"
	"github.com/arthur-debert/punktf/pkg/template"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/rs/zerolog"
)

// Reasons recorded by the executor.
const (
	ReasonNoTarget   = "no target path"
	ReasonAborted    = "deployment aborted by user"
	ReasonSuperseded = "superseded by higher-priority entry"
	ReasonKept       = "target exists, kept"
	ReasonNoResolver = "target exists and no conflict resolver is configured"
)

// Renderer expands template dotfiles.
type Renderer interface {
	Render(name, content string, vars template.Variables) (string, error)
}

// Options contains configuration for the executor
type Options struct {
	DryRun bool
	// Resolver answers conflicts for dotfiles with merge strategy ask.
	Resolver ConflictResolver
	// DefaultMerge applies to dotfiles without their own strategy.
	// Defaults to overwrite.
	DefaultMerge types.MergeStrategy
	Renderer     Renderer
	Hooks        hooks.Runner
	Logger       zerolog.Logger
	// Filesystem operations interface for testing
	FS types.FS
}

// Executor deploys effective profiles.
type Executor struct {
	dryRun       bool
	resolver     ConflictResolver
	defaultMerge types.MergeStrategy
	renderer     Renderer
	hooks        hooks.Runner
	logger       zerolog.Logger
	fs           types.FS
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	merge := opts.DefaultMerge
	if merge == "" {
		merge = types.MergeOverwrite
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = template.New()
	}

	runner := opts.Hooks
	if runner == nil {
		runner = hooks.NewShellRunner()
	}

	return &Executor{
		dryRun:       opts.DryRun,
		resolver:     opts.Resolver,
		defaultMerge: merge,
		renderer:     renderer,
		hooks:        runner,
		logger:       logger,
		fs:           fs,
	}
}

// Deploy runs one deployment of p from src and returns its record. Errors
// never escape: they are recorded per item or as the record's status.
func (e *Executor) Deploy(ctx context.Context, src *source.Source, p *profile.Effective) *deployment.Deployment {
	done := logging.LogOperationStart(e.logger, "deploy")
	defer done()

	b := deployment.NewBuilder()
	if !p.HasTarget() {
		e.logger.Error().Str("profile", p.Name).Msg("No target path configured")
		return b.Failed(ReasonNoTarget)
	}

	e.logger.Info().
		Str("profile", p.Name).
		Str("source", src.Root).
		Str("target", p.Target).
		Int("dotfiles", len(p.Dotfiles)).
		Bool("dry_run", e.dryRun).
		Msg("Starting deployment")

	hc := hooks.Context{Dir: src.Root, Source: src.Root, Target: p.Target, Profile: p.Name}
	if err := e.runHooks(ctx, "pre", p.PreHooks, hc); err != nil {
		return b.Failed(fmt.Sprintf("pre-hook failed: %v", err))
	}

	r := &run{
		Executor: e,
		ctx:      ctx,
		src:      src,
		profile:  p,
		builder:  b,
		written:  make(map[string]bool),
	}
	for _, dotfile := range p.Dotfiles {
		if reason, stop := r.deploy(dotfile); stop {
			e.logger.Warn().Str("reason", reason).Msg("Deployment stopped")
			return b.Failed(reason)
		}
	}

	if err := e.runHooks(ctx, "post", p.PostHooks, hc); err != nil {
		return b.Failed(fmt.Sprintf("post-hook failed: %v", err))
	}

	d := b.Success()
	counts := d.Counts()
	e.logger.Info().
		Int("success", counts.Success).
		Int("failed", counts.Failed).
		Int("skipped", counts.Skipped).
		Int("superseded", counts.Superseded).
		Msg("Deployment finished")
	return d
}

func (e *Executor) runHooks(ctx context.Context, phase string, commands []string, hc hooks.Context) error {
	if len(commands) == 0 {
		return nil
	}
	if e.dryRun {
		e.logger.Info().Str("phase", phase).Strs("commands", commands).Msg("Dry run, skipping hooks")
		return nil
	}
	if err := hooks.RunAll(ctx, e.hooks, commands, hc); err != nil {
		e.logger.Error().Err(err).Str("phase", phase).Msg("Hook failed")
		return err
	}
	return nil
}
