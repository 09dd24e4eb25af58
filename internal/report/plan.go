package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"

	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

var (
	diffColorAdded   = color.New(color.FgGreen)
	diffColorRemoved = color.New(color.FgRed)
	diffColorHunk    = color.New(color.FgCyan)
)

// Manifest renders one "name version" line per file as installed before the
// run, or as it would be after the run when after is true.
func Manifest(s deploy.Summary, after bool) string {
	var b strings.Builder
	for _, r := range s.Results {
		_, _ = fmt.Fprintf(&b, messages.ReportManifestLineFmt, r.Target.Name, manifestVersion(r, after))
	}
	return b.String()
}

func manifestVersion(r deploy.Result, after bool) string {
	if after && r.Outcome == deploy.OutcomeCopied {
		if r.SourceVersion != nil {
			return r.SourceVersion.String()
		}
		return messages.ReportVersionUnknown
	}
	if r.DestinationVersion != nil {
		return r.DestinationVersion.String()
	}
	if r.Outcome == deploy.OutcomeCopied {
		return messages.ReportVersionAbsent
	}
	return messages.ReportVersionUnknown
}

// PlanDiff returns a unified diff of the installed manifest against the
// manifest after the planned run, or "" when nothing would change.
func PlanDiff(s deploy.Summary) string {
	return strings.TrimSpace(udiff.Unified(
		messages.ReportManifestBefore,
		messages.ReportManifestAfter,
		Manifest(s, false),
		Manifest(s, true),
	))
}

// WritePlan renders the per-file plan followed by the colored manifest diff.
func WritePlan(w io.Writer, s deploy.Summary) error {
	writeText(w, s)
	_, _ = fmt.Fprintln(w)
	diff := PlanDiff(s)
	if diff == "" {
		_, _ = fmt.Fprintln(w, messages.ReportPlanNoChanges)
		return nil
	}
	_, _ = fmt.Fprintln(w, messages.ReportPlanHeader)
	for _, line := range strings.Split(diff, "\n") {
		_, _ = fmt.Fprintln(w, colorizeDiffLine(line))
	}
	return nil
}

func colorizeDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return line
	case strings.HasPrefix(line, "@@"):
		return diffColorHunk.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return diffColorAdded.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return diffColorRemoved.Sprint(line)
	default:
		return line
	}
}
