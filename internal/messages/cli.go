package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse         = "vizdeploy"
	RootShort       = "Deploy debugger visualizers into the Visual Studio Visualizers directory"
	RootLong        = "vizdeploy copies the bundled visualizer assemblies into <Visual Studio user dir>/Visualizers,\nreplacing an installed file only when the bundled major.minor version is newer."
	RootVersionFlag = "Print version and exit"

	RootFlagConfig    = "Path to vizdeploy.toml (default: next to the executable)"
	RootFlagHostDir   = "Visual Studio user directory (overrides host_dir and VIZDEPLOY_HOST_DIR)"
	RootFlagSourceDir = "Directory holding the visualizer files (overrides source_dir)"
	RootFlagLogLevel  = "Log level: debug, info, warn or error (overrides log.level)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// DeployUse is the deploy command name.
	DeployUse             = "deploy"
	DeployShort           = "Copy visualizer files whose bundled version is newer than the installed one"
	DeployFlagStrict      = "Attempt every file and exit 1 if any file failed (default mode: baseline)"
	DeployFlagCreateDir   = "Create the Visualizers directory when it is missing"
	DeployFlagFormat      = "Report format: text, json or yaml"
	DeployBaselineIgnored = "deploy failed; baseline mode reports success"

	// PlanUse is the plan command name.
	PlanUse   = "plan"
	PlanShort = "Show what deploy would change without writing anything"

	// InspectUse is the inspect command usage.
	InspectUse     = "inspect FILE..."
	InspectShort   = "Print the embedded file version of PE files"
	InspectLineFmt = "%s\t%s\n"
	InspectFailFmt = "%s\terror: %v\n"

	// InitUse is the init command name.
	InitUse                       = "init"
	InitShort                     = "Write a default vizdeploy.toml"
	InitFlagForce                 = "Overwrite an existing config without prompting"
	InitOverwriteRequiresTerminal = "config already exists; re-run with --force to overwrite it without a prompt"
	InitOverwritePromptFmt        = "Overwrite %s with the default config?"
	InitCancelled                 = "Left the existing config unchanged."
	InitWroteFmt                  = "Wrote %s\n"
	InitStatFmt                   = "check %s: %w"
	InitPathIsDirFmt              = "%s is a directory"
)
