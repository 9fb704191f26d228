package punktf

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/profile"
	"github.com/arthur-debert/punktf/pkg/ui/display"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   MsgProfileShort,
		Long:    MsgProfileLong,
		GroupID: "core",
	}
	cmd.AddCommand(newProfileShowCmd(a))
	cmd.AddCommand(newProfileListCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:               "show [profile]",
		Short:             MsgProfileShowShort,
		Long:              MsgProfileShowLong,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, eff, err := a.resolve(cmd, args, target)
			if err != nil {
				return err
			}

			logger := logging.GetLogger("cmd.profile")
			logger.Info().
				Str("profile", eff.Name).
				Strs("layers", eff.Layers).
				Msg("Profile resolved")

			renderer, err := a.renderer()
			if err != nil {
				return err
			}
			return renderer.RenderResult(&display.ProfileResult{
				Source:  src.Root,
				Profile: eff,
			})
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", MsgFlagTarget)
	return cmd
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgProfileListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.findSource()
			if err != nil {
				return err
			}

			names, err := profile.NewResolver(src.ProfilesDir(), a.env.fs).List()
			if err != nil {
				return err
			}

			renderer, err := a.renderer()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return renderer.RenderMessage(MsgNoProfileFound)
			}
			return renderer.RenderResult(&display.ProfileList{
				Source:   src.Root,
				Profiles: names,
			})
		},
	}
}

// profileNamesCompletion completes profile names from the source tree.
func (a *app) profileNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if a.cfg == nil {
		if err := a.setup(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}

	src, err := a.findSource()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := profile.NewResolver(src.ProfilesDir(), a.env.fs).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
