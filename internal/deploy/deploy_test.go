package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
	"github.com/conn-castle/vizdeploy/internal/testutil"
)

func newTestDeployer(opts Options) *Deployer {
	if opts.RenameDelay == 0 {
		opts.RenameDelay = time.Millisecond
	}
	return New(opts)
}

// setupDirs returns an existing source directory and an existing destination directory.
func setupDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	srcDir := filepath.Join(root, "extension")
	dstDir := filepath.Join(root, "Visual Studio 2022", "Visualizers")
	for _, dir := range []string{srcDir, dstDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return srcDir, dstDir
}

func readBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func readShortVersion(t *testing.T, path string) string {
	t.Helper()
	v, err := fileversion.Read(path)
	if err != nil {
		t.Fatalf("read version %s: %v", path, err)
	}
	return v.Short()
}

func TestDeployIfNewerFreshInstall(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 2, "src")
	dst := filepath.Join(dstDir, "Foo.dll")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if res.DestinationVersion != nil {
		t.Fatalf("expected no destination version for a fresh install")
	}
	if got := readShortVersion(t, dst); got != "1.2" {
		t.Fatalf("expected destination version 1.2, got %s", got)
	}
	if !bytes.Equal(readBytes(t, src), readBytes(t, dst)) {
		t.Fatalf("expected destination to match source bytes")
	}
}

func TestDeployIfNewerStaleDestination(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 2, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 1, "dst")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if res.SourceVersion == nil || res.SourceVersion.Short() != "1.2" {
		t.Fatalf("expected source version 1.2, got %v", res.SourceVersion)
	}
	if res.DestinationVersion == nil || res.DestinationVersion.Short() != "1.1" {
		t.Fatalf("expected destination version 1.1, got %v", res.DestinationVersion)
	}
	if got := readShortVersion(t, dst); got != "1.2" {
		t.Fatalf("expected destination version 1.2, got %s", got)
	}
}

func TestDeployIfNewerNewerMajor(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 3, 0, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 2, 9, "dst")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if got := readShortVersion(t, dst); got != "3.0" {
		t.Fatalf("expected destination version 3.0, got %s", got)
	}
}

func TestDeployIfNewerUpToDate(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 2, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 2, "dst")
	before := readBytes(t, dst)

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeSkippedUpToDate {
		t.Fatalf("expected skipped, got %s (%v)", res.Outcome, res.Err)
	}
	if !bytes.Equal(before, readBytes(t, dst)) {
		t.Fatalf("expected destination bytes unchanged")
	}
}

func TestDeployIfNewerIgnoresBuildAndRevision(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WritePE(t, srcDir, "Foo.dll", testutil.PEImage{Major: 1, Minor: 2, Build: 9, Revision: 9})
	dst := testutil.WritePE(t, dstDir, "Foo.dll", testutil.PEImage{Major: 1, Minor: 2, Build: 1, Payload: []byte("dst")})
	before := readBytes(t, dst)

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeSkippedUpToDate {
		t.Fatalf("expected skipped, got %s", res.Outcome)
	}
	if !bytes.Equal(before, readBytes(t, dst)) {
		t.Fatalf("expected destination bytes unchanged")
	}
}

func TestDeployIfNewerNeverDowngrades(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 9, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 2, 0, "dst")
	before := readBytes(t, dst)

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeSkippedUpToDate {
		t.Fatalf("expected skipped, got %s", res.Outcome)
	}
	if !bytes.Equal(before, readBytes(t, dst)) {
		t.Fatalf("expected destination bytes unchanged")
	}
}

func TestDeployIfNewerIdempotent(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 4, 1, "src")
	dst := filepath.Join(dstDir, "Foo.dll")
	d := newTestDeployer(Options{})

	first := d.DeployIfNewer(context.Background(), src, dst)
	second := d.DeployIfNewer(context.Background(), src, dst)
	if first.Outcome != OutcomeCopied || second.Outcome != OutcomeSkippedUpToDate {
		t.Fatalf("expected copied then skipped, got %s then %s", first.Outcome, second.Outcome)
	}
	if got := readShortVersion(t, dst); got != "4.1" {
		t.Fatalf("expected destination version 4.1, got %s", got)
	}
}

func TestDeployIfNewerMissingDestinationIgnoresSourceVersion(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	zero := testutil.WriteVersioned(t, srcDir, "Zero.dll", 0, 0, "zero")
	unversioned := testutil.WritePE(t, srcDir, "Plain.dll", testutil.PEImage{NoVersion: true})
	garbage := filepath.Join(srcDir, "Text.dll")
	if err := os.WriteFile(garbage, []byte("not a PE at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := newTestDeployer(Options{})

	for _, src := range []string{zero, unversioned, garbage} {
		dst := filepath.Join(dstDir, filepath.Base(src))
		res := d.DeployIfNewer(context.Background(), src, dst)
		if res.Outcome != OutcomeCopied {
			t.Fatalf("%s: expected copied, got %s (%v)", filepath.Base(src), res.Outcome, res.Err)
		}
		if !bytes.Equal(readBytes(t, src), readBytes(t, dst)) {
			t.Fatalf("%s: destination differs from source", filepath.Base(src))
		}
	}
	res := d.DeployIfNewer(context.Background(), zero, filepath.Join(t.TempDir(), "Zero.dll"))
	if res.SourceVersion == nil || res.SourceVersion.Short() != "0.0" {
		t.Fatalf("expected source version 0.0 to be recorded, got %v", res.SourceVersion)
	}
}

func TestDeployIfNewerStrictRequiresSourceVersionForMissingDestination(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	zero := testutil.WriteVersioned(t, srcDir, "Zero.dll", 0, 0, "zero")
	unversioned := testutil.WritePE(t, srcDir, "Plain.dll", testutil.PEImage{NoVersion: true})
	garbage := filepath.Join(srcDir, "Text.dll")
	if err := os.WriteFile(garbage, []byte("not a PE at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := newTestDeployer(Options{Mode: ModeStrict})

	tests := []struct {
		src     string
		outcome Outcome
		reason  Reason
	}{
		{src: zero, outcome: OutcomeCopied},
		{src: unversioned, outcome: OutcomeFailed, reason: ReasonVersionMetadataAbsent},
		{src: garbage, outcome: OutcomeFailed, reason: ReasonSourceMissingOrUnreadable},
	}
	for _, tt := range tests {
		name := filepath.Base(tt.src)
		dst := filepath.Join(dstDir, name)
		res := d.DeployIfNewer(context.Background(), tt.src, dst)
		if res.Outcome != tt.outcome || res.Reason() != tt.reason {
			t.Fatalf("%s: got %s/%q (%v), want %s/%q", name, res.Outcome, res.Reason(), res.Err, tt.outcome, tt.reason)
		}
		if tt.outcome == OutcomeFailed {
			if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("%s: failed deploy must not create the destination", name)
			}
		}
	}
}

func TestDeployIfNewerCopiesSymlinkTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}
	srcDir, dstDir := setupDirs(t)
	linked := testutil.WriteVersioned(t, t.TempDir(), "Real.dll", 1, 2, "real")
	links := map[string]string{
		"Absolute.dll": linked,
		"Relative.dll": "Sibling.dll",
	}
	testutil.WriteVersioned(t, srcDir, "Sibling.dll", 1, 2, "sibling")
	d := newTestDeployer(Options{Mode: ModeStrict})

	for name, target := range links {
		src := filepath.Join(srcDir, name)
		if err := os.Symlink(target, src); err != nil {
			t.Fatalf("symlink %s: %v", name, err)
		}
		dst := filepath.Join(dstDir, name)
		res := d.DeployIfNewer(context.Background(), src, dst)
		if res.Outcome != OutcomeCopied {
			t.Fatalf("%s: expected copied, got %s (%v)", name, res.Outcome, res.Err)
		}
		info, err := os.Lstat(dst)
		if err != nil {
			t.Fatalf("lstat %s: %v", dst, err)
		}
		if !info.Mode().IsRegular() {
			t.Fatalf("%s: destination must be a regular file, got mode %s", name, info.Mode())
		}
		if !bytes.Equal(readBytes(t, src), readBytes(t, dst)) {
			t.Fatalf("%s: destination differs from the link target", name)
		}
	}
}

func TestDeployIfNewerLeavesNoTempFiles(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	dst := filepath.Join(dstDir, "Foo.dll")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	entries, err := os.ReadDir(dstDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Foo.dll" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only Foo.dll, got %v", names)
	}
}

func TestDeployIfNewerSourceNeverModified(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 2, 0, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")
	before := readBytes(t, src)

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if !bytes.Equal(before, readBytes(t, src)) {
		t.Fatalf("source bytes changed")
	}
}

func TestDeployIfNewerMissingSource(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := filepath.Join(srcDir, "Foo.dll")
	d := newTestDeployer(Options{})

	// Destination absent.
	res := d.DeployIfNewer(context.Background(), src, filepath.Join(dstDir, "Foo.dll"))
	if res.Reason() != ReasonSourceMissingOrUnreadable {
		t.Fatalf("expected source missing, got %s (%v)", res.Reason(), res.Err)
	}
	if !errors.Is(res.Err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", res.Err)
	}

	// Destination present.
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")
	res = d.DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonSourceMissingOrUnreadable {
		t.Fatalf("expected source missing, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerSourceNotPE(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := filepath.Join(srcDir, "Foo.dll")
	if err := os.WriteFile(src, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonSourceMissingOrUnreadable {
		t.Fatalf("expected source unreadable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerSourceDirectory(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := filepath.Join(srcDir, "Foo.dll")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, filepath.Join(dstDir, "Foo.dll"))
	if res.Reason() != ReasonSourceMissingOrUnreadable {
		t.Fatalf("expected source unreadable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerVersionMetadataAbsent(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	d := newTestDeployer(Options{})

	src := testutil.WritePE(t, srcDir, "NoVersion.dll", testutil.PEImage{NoVersion: true})
	dst := testutil.WriteVersioned(t, dstDir, "NoVersion.dll", 1, 0, "dst")
	res := d.DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonVersionMetadataAbsent {
		t.Fatalf("source without version: expected version metadata absent, got %s (%v)", res.Reason(), res.Err)
	}

	src = testutil.WriteVersioned(t, srcDir, "Foo.dll", 9, 9, "src")
	dst = testutil.WritePE(t, dstDir, "Foo.dll", testutil.PEImage{NoVersion: true, Payload: []byte("dst")})
	before := readBytes(t, dst)
	res = d.DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonVersionMetadataAbsent {
		t.Fatalf("destination without version: expected version metadata absent, got %s (%v)", res.Reason(), res.Err)
	}
	if !bytes.Equal(before, readBytes(t, dst)) {
		t.Fatalf("destination must not be replaced when its version cannot be read")
	}

	textDst := filepath.Join(dstDir, "Text.dll")
	if err := os.WriteFile(textDst, []byte("not a dll"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	textSrc := testutil.WriteVersioned(t, srcDir, "Text.dll", 1, 0, "src")
	res = d.DeployIfNewer(context.Background(), textSrc, textDst)
	if res.Reason() != ReasonVersionMetadataAbsent {
		t.Fatalf("non-PE destination: expected version metadata absent, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerMissingDestinationDir(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	missing := filepath.Join(dstDir, "nested")

	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, filepath.Join(missing, "Foo.dll"))
	if res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s (%v)", res.Reason(), res.Err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("destination directory must not be created implicitly")
	}
}

func TestDeployIfNewerCreatesDestinationDirWhenEnabled(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	dst := filepath.Join(dstDir, "nested", "Foo.dll")

	res := newTestDeployer(Options{CreateDestinationDir: true}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if got := readShortVersion(t, dst); got != "1.0" {
		t.Fatalf("expected 1.0, got %s", got)
	}
}

func TestDeployIfNewerDestinationParentIsFile(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	parent := filepath.Join(dstDir, "file")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sys := &testSystem{
		StatFunc: func(name string) (os.FileInfo, error) {
			if name == filepath.Join(parent, "Foo.dll") {
				return nil, fs.ErrNotExist
			}
			return os.Stat(name)
		},
	}
	res := newTestDeployer(Options{System: sys}).DeployIfNewer(context.Background(), src, filepath.Join(parent, "Foo.dll"))
	if res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerDestinationIsDirectory(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	dst := filepath.Join(dstDir, "Foo.dll")
	if err := os.Mkdir(dst, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	res := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerDestinationStatError(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	dst := filepath.Join(dstDir, "Foo.dll")
	sys := &testSystem{
		StatFunc: func(name string) (os.FileInfo, error) {
			if name == dst {
				return nil, fs.ErrPermission
			}
			return os.Stat(name)
		},
	}
	res := newTestDeployer(Options{System: sys}).DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonDestinationUnreadable {
		t.Fatalf("expected destination unreadable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerDestinationVersionIOError(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 2, 0, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")
	sys := &testSystem{
		ReadVersionFunc: func(name string) (fileversion.Version, error) {
			if name == dst {
				return fileversion.Version{}, fs.ErrPermission
			}
			return fileversion.Read(name)
		},
	}
	res := newTestDeployer(Options{System: sys}).DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonDestinationUnreadable {
		t.Fatalf("expected destination unreadable, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerDryRun(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	dst := filepath.Join(dstDir, "Foo.dll")

	res := newTestDeployer(Options{DryRun: true}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied || !res.Planned {
		t.Fatalf("expected planned copy, got %s planned=%v", res.Outcome, res.Planned)
	}
	if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("dry run must not write the destination")
	}
}

func TestDeployIfNewerDryRunChecksDestinationDir(t *testing.T) {
	srcDir, _ := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	missing := filepath.Join(t.TempDir(), "Visualizers")
	dst := filepath.Join(missing, "Foo.dll")

	res := newTestDeployer(Options{DryRun: true}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeFailed || res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s/%q (%v)", res.Outcome, res.Reason(), res.Err)
	}
	deployed := newTestDeployer(Options{}).DeployIfNewer(context.Background(), src, dst)
	if deployed.Outcome != res.Outcome || deployed.Reason() != res.Reason() {
		t.Fatalf("dry run %s/%q disagrees with deploy %s/%q", res.Outcome, res.Reason(), deployed.Outcome, deployed.Reason())
	}

	res = newTestDeployer(Options{DryRun: true, CreateDestinationDir: true}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied || !res.Planned {
		t.Fatalf("expected planned copy, got %s planned=%v (%v)", res.Outcome, res.Planned, res.Err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("dry run must not create the destination directory")
	}
}

func TestDeployIfNewerRetriesRename(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 2, 0, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")
	failures := 2
	sys := &testSystem{}
	sys.RenameFunc = func(oldpath string, newpath string) error {
		if failures > 0 {
			failures--
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("sharing violation")}
		}
		return os.Rename(oldpath, newpath)
	}

	res := newTestDeployer(Options{System: sys, RenameAttempts: 3}).DeployIfNewer(context.Background(), src, dst)
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
	if sys.renameCount() != 3 {
		t.Fatalf("expected 3 rename attempts, got %d", sys.renameCount())
	}
	if got := readShortVersion(t, dst); got != "2.0" {
		t.Fatalf("expected 2.0, got %s", got)
	}
}

func TestDeployIfNewerRenameExhaustedCleansUp(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 2, 0, "src")
	dst := testutil.WriteVersioned(t, dstDir, "Foo.dll", 1, 0, "dst")
	before := readBytes(t, dst)
	sys := &testSystem{
		RenameFunc: func(string, string) error { return errors.New("file in use") },
	}

	res := newTestDeployer(Options{System: sys, RenameAttempts: 2}).DeployIfNewer(context.Background(), src, dst)
	if res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s (%v)", res.Reason(), res.Err)
	}
	if sys.renameCount() != 2 {
		t.Fatalf("expected 2 rename attempts, got %d", sys.renameCount())
	}
	if !bytes.Equal(before, readBytes(t, dst)) {
		t.Fatalf("destination must be intact after a failed replace")
	}
	removed := sys.removedPaths()
	if len(removed) != 1 || !strings.HasSuffix(removed[0], ".tmp") {
		t.Fatalf("expected temp file cleanup, got %v", removed)
	}
	if _, err := os.Stat(removed[0]); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected temp file removed, stat err=%v", err)
	}
}

func TestDeployIfNewerCopyFailure(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	sys := &testSystem{
		CopyFileFunc: func(string, string) error { return errors.New("disk full") },
	}

	res := newTestDeployer(Options{System: sys, NewID: func() string { return "fixed" }}).
		DeployIfNewer(context.Background(), src, filepath.Join(dstDir, "Foo.dll"))
	if res.Reason() != ReasonDestinationUnwritable {
		t.Fatalf("expected destination unwritable, got %s (%v)", res.Reason(), res.Err)
	}
	want := filepath.Join(dstDir, ".Foo.dll.fixed.tmp")
	removed := sys.removedPaths()
	if len(removed) != 1 || removed[0] != want {
		t.Fatalf("expected removal of %s, got %v", want, removed)
	}
}

func TestDeployIfNewerCanceled(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestDeployer(Options{}).DeployIfNewer(ctx, src, filepath.Join(dstDir, "Foo.dll"))
	if res.Reason() != ReasonCanceled {
		t.Fatalf("expected canceled, got %s (%v)", res.Reason(), res.Err)
	}
}

func TestDeployIfNewerPackageFunction(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	src := testutil.WriteVersioned(t, srcDir, "Foo.dll", 1, 0, "src")
	res := DeployIfNewer(context.Background(), src, filepath.Join(dstDir, "Foo.dll"))
	if res.Outcome != OutcomeCopied {
		t.Fatalf("expected copied, got %s (%v)", res.Outcome, res.Err)
	}
}

// Destination bytes are unchanged whenever the destination is not older than the source.
func TestDeployIfNewerNoDowngradeProperty(t *testing.T) {
	srcDir, dstDir := setupDirs(t)
	d := newTestDeployer(Options{})
	iteration := 0
	rapid.Check(t, func(rt *rapid.T) {
		iteration++
		srcMajor := rapid.Uint16Range(0, 4).Draw(rt, "srcMajor")
		srcMinor := rapid.Uint16Range(0, 4).Draw(rt, "srcMinor")
		dstMajor := rapid.Uint16Range(0, 4).Draw(rt, "dstMajor")
		dstMinor := rapid.Uint16Range(0, 4).Draw(rt, "dstMinor")

		name := fmt.Sprintf("f%d.dll", iteration)
		src := testutil.WriteVersioned(t, srcDir, name, srcMajor, srcMinor, "src")
		dst := testutil.WriteVersioned(t, dstDir, name, dstMajor, dstMinor, "dst")
		before := readBytes(t, dst)

		res := d.DeployIfNewer(context.Background(), src, dst)
		newer := srcMajor > dstMajor || (srcMajor == dstMajor && srcMinor > dstMinor)
		after := readBytes(t, dst)
		if newer {
			if res.Outcome != OutcomeCopied || !bytes.Equal(after, readBytes(t, src)) {
				rt.Fatalf("expected copy for %d.%d over %d.%d, got %s", srcMajor, srcMinor, dstMajor, dstMinor, res.Outcome)
			}
			return
		}
		if res.Outcome != OutcomeSkippedUpToDate || !bytes.Equal(before, after) {
			rt.Fatalf("expected untouched destination for %d.%d over %d.%d, got %s", srcMajor, srcMinor, dstMajor, dstMinor, res.Outcome)
		}
	})
}
