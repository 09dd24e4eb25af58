package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/conn-castle/vizdeploy/internal/messages"
)

// Mode selects how a batch reacts to a failed file.
type Mode string

const (
	// ModeBaseline stops at the first failure and leaves the remaining files untouched.
	ModeBaseline Mode = "baseline"
	// ModeStrict evaluates every file and reports all failures together.
	ModeStrict Mode = "strict"
)

// ParseMode validates a mode name. Empty means ModeBaseline.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeBaseline:
		return ModeBaseline, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf(messages.DeployInvalidModeFmt, value)
	}
}

// Batch is a fixed, ordered list of file names resolved against two directories.
type Batch struct {
	Files          []string
	SourceDir      string
	DestinationDir string
}

// ValidFileName reports whether name is a bare file name that cannot escape a directory.
func ValidFileName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Target resolves name against the batch directories.
func (b Batch) Target(name string) (Target, error) {
	if !ValidFileName(name) {
		return Target{Name: name}, fmt.Errorf(messages.DeployInvalidFileNameFmt, name)
	}
	return Target{
		Name:        name,
		Source:      filepath.Join(b.SourceDir, name),
		Destination: filepath.Join(b.DestinationDir, name),
	}, nil
}

// Run deploys every file of the batch in order.
//
// In ModeBaseline the first failure ends the batch: remaining files are
// recorded as not attempted and that failure is returned. In ModeStrict every
// file is attempted and the returned error combines all failures. In both
// modes the Summary describes every file, and a nil error means every file was
// evaluated successfully.
func (d *Deployer) Run(ctx context.Context, batch Batch) (Summary, error) {
	summary := Summary{
		RunID:     d.newID(),
		Mode:      d.mode,
		DryRun:    d.dryRun,
		StartedAt: d.clock.Now(),
	}
	logger := d.logger.With(zap.String("run_id", summary.RunID), zap.String("mode", string(d.mode)))
	logger.Info("deploy started",
		zap.String("source_dir", batch.SourceDir),
		zap.String("destination_dir", batch.DestinationDir),
		zap.Int("files", len(batch.Files)))

	var runErr error
	body := func() error {
		runErr = d.runFiles(ctx, batch, &summary, logger)
		return nil
	}
	if d.lock != nil {
		if err := d.lock(body); err != nil {
			summary.Results = notAttempted(batch, batch.Files)
			summary.Aborted = true
			summary.FinishedAt = d.clock.Now()
			return summary, fmt.Errorf(messages.DeployLockFailedFmt, err)
		}
	} else {
		_ = body()
	}

	summary.FinishedAt = d.clock.Now()
	counts := summary.Counts()
	logger.Info("deploy finished",
		zap.Int("copied", counts.Copied),
		zap.Int("skipped", counts.Skipped),
		zap.Int("failed", counts.Failed),
		zap.Int("not_attempted", counts.NotAttempted),
		zap.Bool("aborted", summary.Aborted),
		zap.Duration("elapsed", summary.Duration()))
	return summary, runErr
}

func (d *Deployer) runFiles(ctx context.Context, batch Batch, summary *Summary, logger *zap.Logger) error {
	var errs error
	for i, name := range batch.Files {
		if err := ctx.Err(); err != nil {
			summary.Results = append(summary.Results, notAttempted(batch, batch.Files[i:])...)
			summary.Aborted = true
			return multierr.Append(errs, err)
		}

		var res Result
		target, err := batch.Target(name)
		if err != nil {
			res = Result{
				Target:  target,
				Outcome: OutcomeFailed,
				Err:     &Error{Reason: ReasonSourceMissingOrUnreadable, Path: name, Err: err},
			}
		} else {
			res = d.deploy(ctx, target)
		}
		summary.Results = append(summary.Results, res)
		d.logResultWith(logger, res)

		if res.Outcome != OutcomeFailed {
			continue
		}
		if d.mode == ModeBaseline {
			summary.Results = append(summary.Results, notAttempted(batch, batch.Files[i+1:])...)
			summary.Aborted = true
			return res.Err
		}
		errs = multierr.Append(errs, res.Err)
	}
	return errs
}

func notAttempted(batch Batch, names []string) []Result {
	out := make([]Result, 0, len(names))
	for _, name := range names {
		target, err := batch.Target(name)
		if err != nil {
			target = Target{Name: name}
		}
		out = append(out, Result{Target: target, Outcome: OutcomeNotAttempted})
	}
	return out
}

// Errors splits a Run error into the individual failures.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	errs := multierr.Errors(err)
	if len(errs) == 0 {
		return []error{err}
	}
	return errs
}

// FirstFailure returns the first deploy Error in err, if any.
func FirstFailure(err error) (*Error, bool) {
	for _, e := range Errors(err) {
		var de *Error
		if errors.As(e, &de) {
			return de, true
		}
	}
	return nil, false
}
