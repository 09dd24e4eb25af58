// Package deploy copies visualizer files into the Visual Studio visualizers
// directory, replacing a destination only when the source carries a newer
// major.minor file version.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

const (
	defaultRenameAttempts = 3
	defaultRenameDelay    = 200 * time.Millisecond
	destinationDirPerm    = 0o755
)

// Options controls deployer behavior.
type Options struct {
	System System
	Mode   Mode
	Logger *zap.Logger
	Clock  clock.Clock
	// CreateDestinationDir creates a missing destination directory instead of failing.
	CreateDestinationDir bool
	// DryRun evaluates every target without writing anything.
	DryRun bool
	// RenameAttempts bounds how often the final rename is tried while the destination is held open.
	RenameAttempts uint64
	RenameDelay    time.Duration
	// Lock, when set, wraps a whole batch (for example lockfile.With bound to a path).
	Lock func(fn func() error) error
	// NewID generates run and temp-file identifiers.
	NewID func() string
}

// Deployer performs version-gated copies.
type Deployer struct {
	sys            System
	mode           Mode
	logger         *zap.Logger
	clock          clock.Clock
	createDestDir  bool
	dryRun         bool
	renameAttempts uint64
	renameDelay    time.Duration
	lock           func(fn func() error) error
	newID          func() string
}

// New returns a Deployer with defaults filled in for unset options.
func New(opts Options) *Deployer {
	d := &Deployer{
		sys:            opts.System,
		mode:           opts.Mode,
		logger:         opts.Logger,
		clock:          opts.Clock,
		createDestDir:  opts.CreateDestinationDir,
		dryRun:         opts.DryRun,
		renameAttempts: opts.RenameAttempts,
		renameDelay:    opts.RenameDelay,
		lock:           opts.Lock,
		newID:          opts.NewID,
	}
	if d.sys == nil {
		d.sys = RealSystem{}
	}
	if d.mode == "" {
		d.mode = ModeBaseline
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	if d.renameAttempts == 0 {
		d.renameAttempts = defaultRenameAttempts
	}
	if d.renameDelay <= 0 {
		d.renameDelay = defaultRenameDelay
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

// DeployIfNewer deploys sourcePath to destinationPath with default options on the real filesystem.
func DeployIfNewer(ctx context.Context, sourcePath string, destinationPath string) Result {
	return New(Options{}).DeployIfNewer(ctx, sourcePath, destinationPath)
}

// Decide is the version gate. dst is nil when the destination does not exist.
// Only major and minor participate; equal major.minor never copies and a newer
// destination is never downgraded.
func Decide(src fileversion.Version, dst *fileversion.Version) bool {
	if dst == nil {
		return true
	}
	if src.Major > dst.Major {
		return true
	}
	return src.Major == dst.Major && src.Minor > dst.Minor
}

// DeployIfNewer copies sourcePath over destinationPath when the destination is
// absent or older than the source.
func (d *Deployer) DeployIfNewer(ctx context.Context, sourcePath string, destinationPath string) Result {
	target := Target{
		Name:        filepath.Base(destinationPath),
		Source:      sourcePath,
		Destination: destinationPath,
	}
	res := d.deploy(ctx, target)
	d.logResultWith(d.logger, res)
	return res
}

func (d *Deployer) deploy(ctx context.Context, target Target) Result {
	res := Result{Target: target}
	fail := func(reason Reason, path string, err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = &Error{Reason: reason, Path: path, Err: err}
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(ReasonCanceled, target.Destination, err)
	}

	destExists, err := d.destinationExists(target.Destination)
	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			res.Outcome = OutcomeFailed
			res.Err = de
			return res
		}
		return fail(ReasonDestinationUnreadable, target.Destination, err)
	}

	var srcVersion fileversion.Version
	var dstVersion *fileversion.Version
	if !destExists {
		// First deployment: the source version value is not compared.
		if err := d.checkSource(target.Source); err != nil {
			return fail(ReasonSourceMissingOrUnreadable, target.Source, err)
		}
		v, err := FileDescriptor{Path: target.Source}.Version(d.sys)
		switch {
		case err == nil:
			srcVersion = v
			res.SourceVersion = &v
		case d.mode == ModeStrict || !isMissingVersionErr(err):
			return fail(classifySourceVersionErr(err), target.Source, err)
		default:
			d.logger.Debug("installing source without version metadata",
				zap.String("file", target.Name),
				zap.Error(err))
		}
	} else {
		srcVersion, err = FileDescriptor{Path: target.Source}.Version(d.sys)
		if err != nil {
			return fail(classifySourceVersionErr(err), target.Source, err)
		}
		res.SourceVersion = &srcVersion
		dst, err := FileDescriptor{Path: target.Destination}.Version(d.sys)
		if err != nil {
			return fail(classifyDestinationVersionErr(err), target.Destination, err)
		}
		dstVersion = &dst
		res.DestinationVersion = dstVersion
	}

	if !Decide(srcVersion, dstVersion) {
		res.Outcome = OutcomeSkippedUpToDate
		return res
	}
	if err := d.ensureDestinationDir(filepath.Dir(target.Destination)); err != nil {
		return fail(ReasonDestinationUnwritable, filepath.Dir(target.Destination), err)
	}
	if d.dryRun {
		res.Outcome = OutcomeCopied
		res.Planned = true
		return res
	}
	if err := d.replace(ctx, target.Source, target.Destination); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail(ReasonCanceled, target.Destination, err)
		}
		return fail(ReasonDestinationUnwritable, target.Destination, err)
	}
	res.Outcome = OutcomeCopied
	return res
}

func (d *Deployer) destinationExists(path string) (bool, error) {
	info, err := d.sys.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, &Error{Reason: ReasonDestinationUnwritable, Path: path, Err: errors.New(messages.DeployDestinationIsDir)}
		}
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (d *Deployer) checkSource(path string) error {
	info, err := d.sys.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New(messages.DeploySourceNotRegular)
	}
	return nil
}

// ensureDestinationDir verifies the directory that will receive the file.
// A missing directory is only created when explicitly enabled, and never during a dry run.
func (d *Deployer) ensureDestinationDir(dir string) error {
	info, err := d.sys.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf(messages.DeployDestinationDirNotDirFmt, dir)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if !d.createDestDir {
		return fmt.Errorf(messages.DeployDestinationDirMissingFmt, dir)
	}
	if d.dryRun {
		return nil
	}
	if err := d.sys.MkdirAll(dir, destinationDirPerm); err != nil {
		return fmt.Errorf(messages.DeployCreateDirFailedFmt, dir, err)
	}
	return nil
}

// replace copies src next to dst and renames it into place so readers never see a partial file.
func (d *Deployer) replace(ctx context.Context, src string, dst string) error {
	tmp := filepath.Join(filepath.Dir(dst), fmt.Sprintf(".%s.%s.tmp", filepath.Base(dst), d.newID()))
	if err := d.sys.CopyFile(src, tmp); err != nil {
		_ = d.sys.Remove(tmp)
		return fmt.Errorf(messages.DeployCopyFailedFmt, src, tmp, err)
	}

	backoff := retry.WithMaxRetries(d.renameAttempts-1, retry.NewConstant(d.renameDelay))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := d.sys.Rename(tmp, dst); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return err
			}
			d.logger.Debug("rename failed",
				zap.String("destination", dst),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = d.sys.Remove(tmp)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf(messages.DeployRenameFailedFmt, dst, err)
	}
	return nil
}

func classifySourceVersionErr(err error) Reason {
	if errors.Is(err, fileversion.ErrNoVersionResource) {
		return ReasonVersionMetadataAbsent
	}
	return ReasonSourceMissingOrUnreadable
}

// isMissingVersionErr reports a readable file that carries no usable version metadata.
func isMissingVersionErr(err error) bool {
	return errors.Is(err, fileversion.ErrNoVersionResource) || errors.Is(err, fileversion.ErrNotPE)
}

func classifyDestinationVersionErr(err error) Reason {
	if isMissingVersionErr(err) {
		return ReasonVersionMetadataAbsent
	}
	return ReasonDestinationUnreadable
}

func (d *Deployer) logResultWith(logger *zap.Logger, res Result) {
	fields := []zap.Field{
		zap.String("file", res.Target.Name),
		zap.String("outcome", res.Outcome.String()),
	}
	if res.SourceVersion != nil {
		fields = append(fields, zap.String("source_version", res.SourceVersion.String()))
	}
	if res.DestinationVersion != nil {
		fields = append(fields, zap.String("destination_version", res.DestinationVersion.String()))
	}
	if res.Planned {
		fields = append(fields, zap.Bool("planned", true))
	}
	if res.Err != nil {
		fields = append(fields, zap.String("reason", string(res.Reason())), zap.Error(res.Err))
		logger.Warn("deploy failed", fields...)
		return
	}
	logger.Debug("deploy evaluated", fields...)
}
