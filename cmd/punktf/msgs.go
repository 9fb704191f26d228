package punktf

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Deploy dotfiles from layered profiles"
	MsgDeployShort      = "Deploy the dotfiles of a profile"
	MsgProfileShort     = "Inspect profiles"
	MsgProfileShowShort = "Show the resolved profile without deploying"
	MsgProfileListShort = "List the profiles of the source tree"
	MsgTopicsShort      = "Display available documentation topics"
	MsgTopicsLong       = "Display a list of all available help topics, or one topic, that document punktf beyond command help."
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Status messages
	MsgVersionFormat  = "punktf version %s\n  commit: %s\n  built:  %s\n"
	MsgNoProfileFound = "No profiles found."

	// Error messages
	MsgErrNoProfile      = "no profile given: pass one as argument or set PUNKTF_PROFILE"
	MsgErrDeployFailed   = "some dotfiles failed to deploy"
	MsgErrDeployAborted  = "deployment failed: %s"
	MsgErrInvalidFormat  = "invalid --format: %v"
	MsgErrOutputFormat   = "cannot infer record format of %s: use a .json, .yaml or .yml file"
	MsgErrWriteOutput    = "failed to write deployment record to %s"
	MsgErrTargetAbsolute = "cannot make target %q absolute"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagSource  = "Dotfiles source directory (default $PUNKTF_SOURCE or the current directory)"
	MsgFlagFormat  = "Output format: auto, term, text, json or yaml"
	MsgFlagTarget  = "Deploy to this directory instead of the profile's target"
	MsgFlagDryRun  = "Report what would be deployed without writing anything"
	MsgFlagMerge   = "Merge strategy for dotfiles without one: overwrite, keep or ask"
	MsgFlagOutput  = "Also write the deployment record to this .json or .yaml file"
)

// Layer names of the target pseudo-layers, reported by profile show.
const (
	LayerTargetCLI = "target_cli_argument"
	LayerTargetEnv = "target_environment_variable"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/deploy-long.txt
	msgDeployLongRaw string
	MsgDeployLong    = strings.TrimSpace(msgDeployLongRaw)

	//go:embed msgs/deploy-example.txt
	msgDeployExampleRaw string
	MsgDeployExample    = strings.TrimRight(msgDeployExampleRaw, "\n")

	//go:embed msgs/profile-long.txt
	msgProfileLongRaw string
	MsgProfileLong    = strings.TrimSpace(msgProfileLongRaw)

	//go:embed msgs/profile-show-long.txt
	msgProfileShowLongRaw string
	MsgProfileShowLong    = strings.TrimSpace(msgProfileShowLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
