package messages

// System messages for internal operations.
const (
	// FileVersionNotPE indicates a file that is not a PE image.
	FileVersionNotPE                   = "not a PE image"
	FileVersionNoResource              = "no version resource"
	FileVersionInvalidStringFmt        = "version %q must have two to four dot-separated parts"
	FileVersionInvalidSegmentFmt       = "version segment %q: %w"
	FileVersionResourceOutsideSections = "resource data lies outside every section"
	FileVersionResourceTruncated       = "resource data is truncated"
	FileVersionResourceUnexpectedLeaf  = "resource tree has a data entry where a directory was expected"
	FileVersionResourceTooDeep         = "resource tree has a directory where a data entry was expected"
	FileVersionResourceBadKey          = "version block key is not VS_VERSION_INFO"
	FileVersionResourceNoFixedInfo     = "version block has no fixed file info"
	FileVersionResourceBadSignature    = "fixed file info signature mismatch"

	// DeployErrorFmt formats a classified deploy failure: reason, path, cause.
	DeployErrorFmt                 = "%s: %s: %v"
	DeployDestinationIsDir         = "destination path is a directory"
	DeploySourceNotRegular         = "source is not a regular file"
	DeployDestinationDirNotDirFmt  = "%s exists but is not a directory"
	DeployDestinationDirMissingFmt = "destination directory %s does not exist"
	DeployCreateDirFailedFmt       = "create destination directory %s: %w"
	DeployCopyFailedFmt            = "copy %s to %s: %w"
	DeployRenameFailedFmt          = "replace %s: %w"
	DeployInvalidModeFmt           = "invalid mode %q (want baseline or strict)"
	DeployInvalidFileNameFmt       = "invalid file name %q: must be a bare file name"
	DeployLockFailedFmt            = "acquire deploy lock: %w"

	// LockPathRequired indicates an empty lock path.
	LockPathRequired = "lock path is required"
	LockOpenFmt      = "open lock %s: %w"
	LockAcquireFmt   = "lock %s: %w"
	LockTimeout      = "timed out waiting for lock"
	LockTimeoutFmt   = "lock %s: %w after %s"

	// HostDirUnsupportedPlatform indicates there is no default host directory on this OS.
	HostDirUnsupportedPlatform = "host directory is not resolvable on this platform; pass --host-dir or set VIZDEPLOY_HOST_DIR"
	HostDirExpandFmt           = "expand host dir %s: %w"
	HostDirDocumentsFmt        = "resolve Documents folder: %w"
	HostDirEditionRequired     = "Visual Studio edition is required"
	HostDirSubfolderInvalidFmt = "subfolder %q must be a single directory name"

	// LoggingInvalidLevelFmt formats an unknown log level.
	LoggingInvalidLevelFmt  = "invalid log level %q (want debug, info, warn or error)"
	LoggingInvalidFormatFmt = "invalid log format %q (want console or json)"
	LoggingBuildFmt         = "build logger: %w"
)
