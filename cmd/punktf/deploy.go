package punktf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/punktf/pkg/deployment"
	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/executor"
	"github.com/arthur-debert/punktf/pkg/hooks"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/profile"
	"github.com/arthur-debert/punktf/pkg/source"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/arthur-debert/punktf/pkg/ui"
	"github.com/arthur-debert/punktf/pkg/ui/display"
	"github.com/arthur-debert/punktf/pkg/ui/prompt"
)

func newDeployCmd(a *app) *cobra.Command {
	var (
		target string
		output string
	)

	cmd := &cobra.Command{
		Use:               "deploy [profile]",
		Short:             MsgDeployShort,
		Long:              MsgDeployLong,
		Example:           MsgDeployExample,
		GroupID:           "core",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.deploy")

			src, eff, err := a.resolve(cmd, args, target)
			if err != nil {
				return err
			}

			runner := a.env.hooks
			if runner == nil {
				shell := hooks.NewShellRunner()
				shell.Stdin = a.env.stdin
				shell.Stdout = a.env.stdout
				shell.Stderr = a.env.stderr
				shell.Timeout = a.cfg.Hooks.ShellTimeout
				runner = shell
			}

			dryRun := a.cfg.Deploy.DryRun
			logger.Info().
				Str("profile", eff.Name).
				Str("source", src.Root).
				Str("target", eff.Target).
				Bool("dryRun", dryRun).
				Str("merge", a.cfg.Deploy.Merge.String()).
				Msg("Starting deploy")

			exec := executor.New(executor.Options{
				DryRun:       dryRun,
				Resolver:     a.conflictResolver(),
				DefaultMerge: a.cfg.Deploy.Merge,
				Hooks:        runner,
				FS:           a.env.fs,
			})
			d := exec.Deploy(cmd.Context(), src, eff)

			result := &display.DeployResult{
				Profile:    eff.Name,
				Source:     src.Root,
				Target:     eff.Target,
				DryRun:     dryRun,
				Deployment: d,
			}

			renderer, err := a.renderer()
			if err != nil {
				return err
			}
			if err := renderer.RenderResult(result); err != nil {
				return err
			}

			if output != "" {
				if err := writeRecord(output, result); err != nil {
					return err
				}
				logger.Info().Str("path", output).Msg("Deployment record written")
			}

			return deployError(d)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", MsgFlagTarget)
	cmd.Flags().BoolP("dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().StringP("merge", "m", "", MsgFlagMerge)
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)

	_ = cmd.RegisterFlagCompletionFunc("merge", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(types.MergeOverwrite),
			string(types.MergeKeep),
			string(types.MergeAsk),
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// resolve finds the source tree and resolves the requested profile with
// the command-line target above it and the configured target below it.
func (a *app) resolve(cmd *cobra.Command, args []string, target string) (*source.Source, *profile.Effective, error) {
	src, err := a.findSource()
	if err != nil {
		return nil, nil, err
	}

	name := a.cfg.Profile
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return nil, nil, errors.New(errors.ErrInvalidInput, MsgErrNoProfile)
	}

	if target != "" {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput, MsgErrTargetAbsolute, target)
		}
		target = abs
	}

	resolver := profile.NewResolver(src.ProfilesDir(), a.env.fs)
	eff, err := resolver.Resolve(cmd.Context(),
		[]profile.Layer{profile.TargetLayer(LayerTargetCLI, target)},
		name,
		[]profile.Layer{profile.TargetLayer(LayerTargetEnv, a.cfg.Target)},
	)
	if err != nil {
		return nil, nil, err
	}
	return src, eff, nil
}

// conflictResolver prompts on an interactive stdin and keeps existing
// targets otherwise.
func (a *app) conflictResolver() executor.ConflictResolver {
	if a.env.interactive != nil && a.env.interactive() {
		return prompt.NewConsole(a.env.stdin, a.env.stderr)
	}
	return executor.Always(types.ActionKeep)
}

// writeRecord saves the result as JSON or YAML, chosen by the extension of
// path.
func writeRecord(path string, result *display.DeployResult) error {
	var format ui.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = ui.FormatJSON
	case ".yaml", ".yml":
		format = ui.FormatYAML
	default:
		return errors.Newf(errors.ErrInvalidInput, MsgErrOutputFormat, path).WithDetail("path", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, MsgErrWriteOutput, path).WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	renderer, err := ui.NewRenderer(format, f)
	if err != nil {
		return err
	}
	if err := renderer.RenderResult(result); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, MsgErrWriteOutput, path).WithDetail("path", path)
	}
	return f.Close()
}

// deployError turns a finished record into the command's exit error.
func deployError(d *deployment.Deployment) error {
	status := d.Status()
	if status.IsFailed() {
		code := errors.ErrDeployFailed
		if status.Reason == executor.ReasonAborted {
			code = errors.ErrDeployAborted
		}
		return errors.Newf(code, MsgErrDeployAborted, status.Reason)
	}
	if d.HasFailures() {
		return errors.New(errors.ErrDeployFailed, MsgErrDeployFailed).
			WithDetail("failed", d.Counts().Failed)
	}
	return nil
}
