package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Check the host directory, destination and bundled visualizer files"

	DoctorHealthCheckFmt = "🏥 Checking visualizer deployment from %s...\n"

	DoctorCheckNameConfig      = "Config"
	DoctorCheckNameHostDir     = "HostDir"
	DoctorCheckNameDestination = "Destination"
	DoctorCheckNameSource      = "Source"
	DoctorCheckNameInstalled   = "Installed"

	DoctorConfigLoadedFmt     = "Configuration loaded from %s"
	DoctorConfigDefaultsFmt   = "No config at %s; using built-in defaults"
	DoctorConfigLoadFailedFmt = "Failed to load configuration: %v"
	DoctorConfigLoadRecommend = "Fix the reported key, or run `vizdeploy init --force` to write a fresh default config."

	DoctorHostDirResolvedFmt      = "Host directory: %s"
	DoctorHostDirFailedFmt        = "Cannot resolve host directory: %v"
	DoctorHostDirRecommend        = "Pass --host-dir, set host_dir in vizdeploy.toml, or set VIZDEPLOY_HOST_DIR."
	DoctorHostDirMissingFmt       = "Host directory does not exist: %s"
	DoctorHostDirMissingRecommend = "Start the matching Visual Studio edition once, or point host_dir at its user directory."
	DoctorHostDirNotDirFmt        = "%s exists but is not a directory"

	DoctorDestinationExistsFmt           = "Destination directory exists: %s"
	DoctorDestinationMissingFmt          = "Destination directory is missing: %s"
	DoctorDestinationMissingRecommend    = "Create it, or set create_destination_dir = true in vizdeploy.toml."
	DoctorDestinationWillCreateFmt       = "Destination directory %s is missing and will be created"
	DoctorDestinationNotDirFmt           = "%s exists but is not a directory"
	DoctorDestinationNotDirRecommend     = "Remove or rename the file so the directory can be created."
	DoctorDestinationUnreadableFmt       = "Cannot inspect %s: %v"
	DoctorDestinationUnreadableRecommend = "Check the permissions on the Visual Studio user directory."

	DoctorSourceVersionFmt       = "%s %s"
	DoctorSourceMissingFmt       = "%s is missing from %s"
	DoctorSourceMissingRecommend = "Reinstall the extension so every visualizer file is present."
	DoctorSourceNoVersionFmt     = "%s has no version resource; baseline mode installs it only where no copy exists, strict mode fails it"
	DoctorSourceUnreadableFmt    = "%s cannot be read: %v"

	DoctorInstalledUpToDateFmt        = "%s %s is up to date"
	DoctorInstalledPendingFmt         = "%s %s will be replaced by %s on the next deploy"
	DoctorInstalledNewerFmt           = "%s %s is newer than the bundled %s and will be kept"
	DoctorInstalledNotInstalledFmt    = "%s is not installed yet"
	DoctorInstalledNoVersionFmt       = "%s is installed without readable version metadata: %v"
	DoctorInstalledNoVersionRecommend = "Delete the installed copy so the next deploy can reinstall it."

	DoctorFailureSummary = "❌ Some checks failed. Please address the items above."
	DoctorFailureError   = "doctor checks failed"
	DoctorSuccessSummary = "✅ All checks passed. Visualizers are ready to deploy."

	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-11s %s\n"
	DoctorRecommendationPrefix = "       💡 "
	DoctorRecommendationIndent = "         "
)
