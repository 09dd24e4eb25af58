package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conn-castle/vizdeploy/internal/assets"
	"github.com/conn-castle/vizdeploy/internal/testutil"
)

// cliEnv is a fake installation: the executable directory holds the bundle
// and hostDir is a Visual Studio user directory with an empty Visualizers folder.
type cliEnv struct {
	exeDir  string
	hostDir string
	destDir string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	env := cliEnv{exeDir: t.TempDir(), hostDir: t.TempDir()}
	env.destDir = filepath.Join(env.hostDir, assets.Subfolder)
	require.NoError(t, os.MkdirAll(env.destDir, 0o755))

	origExeDir := executableDirFunc
	origGetenv := getenvFunc
	executableDirFunc = func() (string, error) { return env.exeDir, nil }
	getenvFunc = func(string) string { return "" }
	t.Cleanup(func() {
		executableDirFunc = origExeDir
		getenvFunc = origGetenv
	})
	return env
}

func (e cliEnv) writeBundle(t *testing.T, major uint16, minor uint16) {
	t.Helper()
	testutil.WriteBundle(t, e.exeDir, assets.Files(), major, minor)
}

func (e cliEnv) writeConfig(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, e.exeDir, "vizdeploy.toml", content)
}

// runCLI executes the root command with args and returns both output streams.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"vizdeploy"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}
