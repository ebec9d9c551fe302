package cli

const (
	MsgRootShort = "Batch file operations for photo collections"
	MsgRootLong  = `photobatch copies, moves, renames and deletes photos together with their
sidecar files (.xmp, .pp3, ...). Every batch is checked before anything is
touched; problems are reported and, where needed, confirmed before the
batch runs.

Ctrl-C cancels the running batch. Files already processed keep their new
state; the rest are left untouched. At a prompt, Ctrl-C answers "cancel".`

	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Config file (default is $XDG_CONFIG_HOME/photobatch/config.toml)"
	MsgFlagYes        = "Answer yes to every confirmation"
	MsgFlagCheck      = "Validate the batch and report problems without changing anything"
	MsgFlagNoSidecars = "Do not carry sidecar files along with their photos"
	MsgFlagFormat     = "Output format: auto, term or text"
	MsgFlagTo         = "Destination directory (asked for when omitted)"
	MsgFlagWith       = "Run the operation through this external command"
	MsgFlagSet        = "Metadata edit as namespace:Property=value (repeatable)"

	MsgCopyShort      = "Copy photos and their sidecars to a directory"
	MsgMoveShort      = "Move photos and their sidecars to a directory"
	MsgRenameShort    = "Rename photos in place"
	MsgRenameLong     = `Rename takes OLD NEW pairs. A NEW without a directory stays next to OLD.`
	MsgDeleteShort    = "Delete photos and their sidecars"
	MsgRmdirShort     = "Delete a directory tree"
	MsgMkdirShort     = "Create a directory"
	MsgRenameDirShort = "Rename a directory"
	MsgWriteMetaShort = "Write metadata edits to XMP sidecars"
	MsgReadMetaShort  = "Show the XMP sidecar properties of a photo"
	MsgFilterShort    = "Run an external filter producing new files"
	MsgEditorsShort   = "List the configured external commands"
	MsgGenConfigShort = "Print a commented default config file"
	MsgVersionShort   = "Print version information"

	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `To load completions:

Bash:
  $ source <(photobatch completion bash)

Zsh:
  $ photobatch completion zsh > "${fpath[1]}/_photobatch"

Fish:
  $ photobatch completion fish | source

PowerShell:
  PS> photobatch completion powershell | Out-String | Invoke-Expression
`

	MsgErrNoCommand   = "no command specified"
	MsgErrRenamePairs = "rename needs OLD NEW pairs"
	MsgErrBadSet      = "invalid --set %q, want namespace:Property=value"
	MsgErrNoEdits     = "nothing to write, use --set"
	MsgErrBatchEnded  = "batch ended in %s"
)
