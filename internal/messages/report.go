package messages

// Report messages for rendering deploy summaries.
const (
	// ReportInvalidFormatFmt formats an unknown output format.
	ReportInvalidFormatFmt = "unknown output format %q (want text, json or yaml)"
	ReportEncodeFmt        = "encode %s report: %w"

	ReportHeaderFmt     = "Deploying %d files from %s to %s (%s mode)\n"
	ReportDryRunHeader  = "Dry run: nothing will be written.\n"
	ReportLineFmt       = "%s %-34s %s\n"
	ReportSummaryFmt    = "copied %d, up to date %d, failed %d, not attempted %d (%s)\n"
	ReportAbortedNotice = "Stopped at the first failure; run with --strict to attempt every file."

	ReportLabelCopied       = "copied      "
	ReportLabelPlanned      = "would copy  "
	ReportLabelSkipped      = "up to date  "
	ReportLabelFailed       = "failed      "
	ReportLabelNotAttempted = "not tried   "

	ReportVersionChangeFmt = "%s -> %s"
	ReportVersionAbsent    = "absent"
	ReportVersionUnknown   = "unknown"

	ReportPlanHeader      = "Planned changes to installed versions:"
	ReportPlanNoChanges   = "No files would change."
	ReportManifestLineFmt = "%s %s\n"
	ReportManifestBefore  = "installed"
	ReportManifestAfter   = "after deploy"
)
