package cli

import (
	"github.com/arthur-debert/photobatch/internal/version"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "photobatch",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.configPath, "config", "", MsgFlagConfig)
	flags.BoolVarP(&opts.yes, "yes", "y", false, MsgFlagYes)
	flags.BoolVar(&opts.check, "check", false, MsgFlagCheck)
	flags.BoolVar(&opts.noSidecars, "no-sidecars", false, MsgFlagNoSidecars)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "files", Title: "FILE COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "folders", Title: "FOLDER COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	for _, c := range []*cobra.Command{
		newCopyCmd(opts),
		newMoveCmd(opts),
		newRenameCmd(opts),
		newDeleteCmd(opts),
		newWriteMetaCmd(opts),
		newReadMetaCmd(opts),
		newFilterCmd(opts),
	} {
		c.GroupID = "files"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newRmdirCmd(opts),
		newMkdirCmd(opts),
		newRenameDirCmd(opts),
	} {
		c.GroupID = "folders"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newEditorsCmd(opts),
		newGenConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	} {
		c.GroupID = "misc"
		rootCmd.AddCommand(c)
	}

	return rootCmd
}
