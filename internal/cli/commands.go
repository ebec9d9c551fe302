package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/photobatch/internal/version"
	"github.com/arthur-debert/photobatch/pkg/config"
	"github.com/arthur-debert/photobatch/pkg/errors"
	"github.com/arthur-debert/photobatch/pkg/fileops"
	"github.com/arthur-debert/photobatch/pkg/filedata"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// transferCmd builds copy and move, which share their flags
func transferCmd(opts *globalOptions, use, short string,
	start func(a *app, paths []string, dest string, bo ...fileops.BatchOption) (*fileops.Batch, error)) *cobra.Command {
	var to, with string
	cmd := &cobra.Command{
		Use:   use + " FILE... [--to DIR]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			b, err := start(a, args, to, a.batchOptions(editorOption(with)...)...)
			return a.run(cmd.Context(), b, err)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", MsgFlagTo)
	cmd.Flags().StringVar(&with, "with", "", MsgFlagWith)
	return cmd
}

func newCopyCmd(opts *globalOptions) *cobra.Command {
	return transferCmd(opts, "copy", MsgCopyShort,
		func(a *app, paths []string, dest string, bo ...fileops.BatchOption) (*fileops.Batch, error) {
			return a.engine.Copy(paths, dest, bo...)
		})
}

func newMoveCmd(opts *globalOptions) *cobra.Command {
	return transferCmd(opts, "move", MsgMoveShort,
		func(a *app, paths []string, dest string, bo ...fileops.BatchOption) (*fileops.Batch, error) {
			return a.engine.Move(paths, dest, bo...)
		})
}

func newRenameCmd(opts *globalOptions) *cobra.Command {
	var with string
	cmd := &cobra.Command{
		Use:   "rename OLD NEW [OLD NEW]...",
		Short: MsgRenameShort,
		Long:  MsgRenameLong,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrRenamePairs)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			paths, dests := renamePairs(args)
			b, err := a.engine.Rename(paths, dests, a.batchOptions(editorOption(with)...)...)
			return a.run(cmd.Context(), b, err)
		},
	}
	cmd.Flags().StringVar(&with, "with", "", MsgFlagWith)
	return cmd
}

// renamePairs splits OLD NEW pairs. A bare NEW name stays in OLD's
// directory.
func renamePairs(args []string) (paths, dests []string) {
	for i := 0; i+1 < len(args); i += 2 {
		old, name := args[i], args[i+1]
		if !strings.ContainsRune(name, filepath.Separator) {
			name = filepath.Join(filepath.Dir(old), name)
		}
		paths = append(paths, old)
		dests = append(dests, name)
	}
	return paths, dests
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	var with string
	cmd := &cobra.Command{
		Use:     "delete FILE...",
		Aliases: []string{"rm"},
		Short:   MsgDeleteShort,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			b, err := a.engine.Delete(args, a.batchOptions(editorOption(with)...)...)
			return a.run(cmd.Context(), b, err)
		},
	}
	cmd.Flags().StringVar(&with, "with", "", MsgFlagWith)
	return cmd
}

func newRmdirCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir DIR",
		Short: MsgRmdirShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			b, err := a.engine.DeleteFolder(args[0], a.batchOptions()...)
			return a.run(cmd.Context(), b, err)
		},
	}
}

func newMkdirCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir DIR",
		Short: MsgMkdirShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			b, err := a.engine.CreateFolder(args[0], a.batchOptions()...)
			return a.run(cmd.Context(), b, err)
		},
	}
}

func newRenameDirCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-dir DIR NEW",
		Short: MsgRenameDirShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			_, dests := renamePairs(args)
			b, err := a.engine.RenameFolder(args[0], dests[0], a.batchOptions()...)
			return a.run(cmd.Context(), b, err)
		},
	}
}

func newWriteMetaCmd(opts *globalOptions) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "write-meta FILE... --set ns:Prop=value",
		Short: MsgWriteMetaShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseSets(sets)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			for _, p := range args {
				path, err := filedata.Canonical(p)
				if err != nil {
					return err
				}
				for k, v := range edits {
					a.queue.Set(path, k, v)
				}
			}
			b, err := a.engine.WriteMetadata(args, a.batchOptions()...)
			return a.run(cmd.Context(), b, err)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)
	return cmd
}

func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, MsgErrNoEdits)
	}
	edits := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || !strings.Contains(key, ":") {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgErrBadSet, s)
		}
		edits[strings.TrimSpace(key)] = value
	}
	return edits, nil
}

func newReadMetaCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read-meta FILE",
		Short: MsgReadMetaShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			path, err := filedata.Canonical(args[0])
			if err != nil {
				return err
			}
			props, err := a.writer.Read(path)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, props[k])
			}
			return nil
		},
	}
}

func newFilterCmd(opts *globalOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "filter EDITOR FILE... [--to DIR]",
		Short: MsgFilterShort,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			b, err := a.engine.RunFilter(args[0], args[1:], to, a.batchOptions()...)
			return a.run(cmd.Context(), b, err)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", MsgFlagTo)
	return cmd
}

func newEditorsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "editors",
		Short: MsgEditorsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			for _, d := range a.editors.List() {
				mode := "each file"
				switch {
				case d.Filter:
					mode = "filter"
				case d.Blocking:
					mode = "blocking"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %-10s %s\n", d.Key, d.DisplayName(), mode, d.Command)
			}
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "photobatch version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			var err error
			switch args[0] {
			case "bash":
				err = cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				err = cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				err = cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				err = cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			if err != nil {
				log.Error().Err(err).Str("shell", args[0]).Msg("Failed to generate completion")
			}
		},
	}
}

func editorOption(key string) []fileops.BatchOption {
	if key == "" {
		return nil
	}
	return []fileops.BatchOption{fileops.WithEditor(key)}
}
