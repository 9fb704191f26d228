package hooks

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Environment variables handed to every hook.
const (
	EnvCurrentSource  = "PUNKTF_CURRENT_SOURCE"
	EnvCurrentTarget  = "PUNKTF_CURRENT_TARGET"
	EnvCurrentProfile = "PUNKTF_CURRENT_PROFILE"
)

// Context describes the deployment a hook runs for.
type Context struct {
	// Dir is the working directory, normally the source root.
	Dir     string
	Source  string
	Target  string
	Profile string
}

// Environ returns the PUNKTF_CURRENT_* assignments for c.
func (c Context) Environ() []string {
	return []string{
		EnvCurrentSource + "=" + c.Source,
		EnvCurrentTarget + "=" + c.Target,
		EnvCurrentProfile + "=" + c.Profile,
	}
}

// Runner executes a single hook command.
type Runner interface {
	Run(ctx context.Context, command string, hc Context) error
}

// ShellRunner interprets hooks with a POSIX shell interpreter.
type ShellRunner struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string
	// Timeout bounds each command; zero means no limit.
	Timeout time.Duration

	logger zerolog.Logger
}

// NewShellRunner returns a runner wired to the process streams and
// environment.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
		logger:  logging.GetLogger("hooks"),
	}
}

// Run parses and executes command. A non-zero exit status is reported as
// an ErrHookFailed error carrying the status.
func (r *ShellRunner) Run(ctx context.Context, command string, hc Context) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "hook")
	if err != nil {
		return errors.Wrapf(err, errors.ErrHookParse, "cannot parse hook %q", command).
			WithDetail("command", command)
	}

	var environ []string
	if r.Environ != nil {
		environ = append(environ, r.Environ()...)
	}
	environ = append(environ, hc.Environ()...)

	runner, err := interp.New(
		interp.Dir(hc.Dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrHookFailed, "cannot start hook interpreter").
			WithDetail("command", command)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.logger.Info().Str("command", command).Str("dir", hc.Dir).Msg("Running hook")
	start := time.Now()

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if stderrors.As(err, &status) {
			return errors.Newf(errors.ErrHookFailed, "hook %q exited with status %d", command, int(status)).
				WithDetail("command", command).
				WithDetail("exitCode", int(status))
		}
		return errors.Wrapf(err, errors.ErrHookFailed, "hook %q failed", command).
			WithDetail("command", command)
	}

	r.logger.Debug().Str("command", command).Dur("duration", time.Since(start)).Msg("Hook finished")
	return nil
}

// RunAll runs commands in order and stops at the first failure.
func RunAll(ctx context.Context, r Runner, commands []string, hc Context) error {
	for _, command := range commands {
		if err := r.Run(ctx, command, hc); err != nil {
			return err
		}
	}
	return nil
}
