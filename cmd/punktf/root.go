package punktf

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/punktf/internal/version"
	"github.com/arthur-debert/punktf/pkg/config"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/hooks"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/source"
	"github.com/arthur-debert/punktf/pkg/topics"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/arthur-debert/punktf/pkg/ui"
)

// Flags that override a configuration key when set.
var flagKeys = map[string]string{
	"source":  "source",
	"format":  "output.format",
	"merge":   "deploy.merge",
	"dry-run": "deploy.dry_run",
}

// environment is everything the commands touch outside their arguments.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// interactive reports whether conflicts can be asked about on stdin.
	interactive func() bool
	fs          types.FS
	getenv      func(string) string
	getwd       func() (string, error)
	// userConfigDir overrides $XDG_CONFIG_HOME/punktf when set.
	userConfigDir string
	// hooks overrides the shell runner when set.
	hooks hooks.Runner
	// logFile enables the log file in addition to the configuration.
	logFile bool
}

func defaultEnvironment() environment {
	return environment{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: func() bool { return ui.IsTerminal(os.Stdin) },
		fs:          filesystem.NewOS(),
		getenv:      os.Getenv,
		getwd:       os.Getwd,
		logFile:     true,
	}
}

// app carries the state shared by all commands of one invocation.
type app struct {
	env       environment
	verbosity int
	source    string
	format    string
	cfg       *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnvironment())
}

func newRootCmd(env environment) *cobra.Command {
	initTemplateFormatting()

	a := &app{env: env}

	rootCmd := &cobra.Command{
		Use:     "punktf",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.SetIn(env.stdin)
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&a.source, "source", "s", "", MsgFlagSource)
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", "", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newDeployCmd(a))
	rootCmd.AddCommand(newProfileCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	tm, err := topics.InitializeWithOptions(rootCmd, topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		tm = topics.New()
	}
	rootCmd.AddCommand(newTopicsCmd(tm))

	return rootCmd
}

// setup loads the configuration and configures logging. Flags given on
// the command line override every configuration layer.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := make(map[string]interface{})
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(config.Options{
		UserConfigDir: a.env.userConfigDir,
		SourceDir:     a.source,
		Overrides:     overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(logging.Options{
		Verbosity: a.verbosity,
		File:      a.env.logFile && cfg.Logging.File,
		Console:   a.env.stderr,
		NoColor:   !cfg.Output.Color,
	})
	log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
	return nil
}

// findSource locates the source tree from the configured source, falling
// back to $PUNKTF_SOURCE and the working directory.
func (a *app) findSource() (*source.Source, error) {
	finder := &source.Finder{
		FS:     a.env.fs,
		Getenv: a.env.getenv,
		Getwd:  a.env.getwd,
	}
	return finder.Find(a.cfg.Source)
}

// renderer returns the output renderer for the configured format.
func (a *app) renderer() (ui.Renderer, error) {
	format, err := ui.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInvalidFormat, err)
	}
	return ui.NewRenderer(format, a.env.stdout)
}
