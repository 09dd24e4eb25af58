package deploy

import (
	"errors"
	"fmt"
	"time"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

// Outcome is the result of evaluating one deployment target.
type Outcome int

const (
	// OutcomeNotAttempted marks a target skipped because an earlier failure aborted the batch.
	OutcomeNotAttempted Outcome = iota
	// OutcomeCopied means the source replaced (or created) the destination.
	OutcomeCopied
	// OutcomeSkippedUpToDate means the destination was left alone.
	OutcomeSkippedUpToDate
	// OutcomeFailed means the target could not be evaluated or copied.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeSkippedUpToDate:
		return "skipped_up_to_date"
	case OutcomeFailed:
		return "failed"
	default:
		return "not_attempted"
	}
}

// Reason classifies a failed target.
type Reason string

const (
	// ReasonSourceMissingOrUnreadable covers an absent source or one whose version cannot be parsed.
	ReasonSourceMissingOrUnreadable Reason = "source_missing_or_unreadable"
	// ReasonDestinationUnwritable covers a missing destination directory or a failed write.
	ReasonDestinationUnwritable Reason = "destination_unwritable"
	// ReasonDestinationUnreadable covers an existing destination that cannot be inspected.
	ReasonDestinationUnreadable Reason = "destination_unreadable"
	// ReasonVersionMetadataAbsent covers a file without a version resource.
	ReasonVersionMetadataAbsent Reason = "version_metadata_absent"
	// ReasonCanceled covers a context canceled before or during the copy.
	ReasonCanceled Reason = "canceled"
)

// Error is the typed failure carried by a failed Result.
type Error struct {
	Reason Reason
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf(messages.DeployErrorFmt, e.Reason, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsReason reports whether err carries a deploy Error with the given reason.
func IsReason(err error, reason Reason) bool {
	var de *Error
	return errors.As(err, &de) && de.Reason == reason
}

// FileDescriptor names a file whose version is read on demand.
// Versions are never cached; the file system is the only state.
type FileDescriptor struct {
	Path string
}

// Version reads the descriptor's file version through sys.
func (f FileDescriptor) Version(sys System) (fileversion.Version, error) {
	return sys.ReadVersion(f.Path)
}

// Target pairs a source file with its destination path.
type Target struct {
	Name        string
	Source      string
	Destination string
}

// Result records what happened to one target.
type Result struct {
	Target  Target
	Outcome Outcome
	// Planned is set for dry runs: the outcome is what would have happened.
	Planned bool
	// SourceVersion and DestinationVersion are nil when they were not read.
	SourceVersion      *fileversion.Version
	DestinationVersion *fileversion.Version
	Err                error
}

// Reason returns the failure reason, or "" when the result did not fail.
func (r Result) Reason() Reason {
	var de *Error
	if errors.As(r.Err, &de) {
		return de.Reason
	}
	return ""
}

// Counts tallies outcomes across a batch.
type Counts struct {
	Copied       int
	Skipped      int
	Failed       int
	NotAttempted int
}

// Summary is the aggregate result of a batch run.
type Summary struct {
	RunID      string
	Mode       Mode
	DryRun     bool
	Results    []Result
	Aborted    bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Counts tallies the summary's results.
func (s Summary) Counts() Counts {
	var c Counts
	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeCopied:
			c.Copied++
		case OutcomeSkippedUpToDate:
			c.Skipped++
		case OutcomeFailed:
			c.Failed++
		default:
			c.NotAttempted++
		}
	}
	return c
}

// OK reports whether every file was evaluated successfully.
func (s Summary) OK() bool {
	c := s.Counts()
	return c.Failed == 0 && c.NotAttempted == 0
}

// Failures returns the failed results in batch order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// Duration is the wall time between start and finish.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
