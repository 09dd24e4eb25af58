// Package hostdir resolves the Visual Studio user directory that receives visualizers.
package hostdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/vizdeploy/internal/assets"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

// EnvHostDir overrides the resolved installation root.
const EnvHostDir = "VIZDEPLOY_HOST_DIR"

// DefaultEdition is the Visual Studio edition used when none is configured.
const DefaultEdition = "2022"

// ErrUnsupportedPlatform is returned when no explicit root is given and the OS has no default.
var ErrUnsupportedPlatform = errors.New(messages.HostDirUnsupportedPlatform)

// documentsDir returns the user's Documents folder. Replaced per platform.
var documentsDir = platformDocumentsDir

// Options selects how the installation root is found.
type Options struct {
	// Explicit comes from --host-dir or the host_dir config key and wins over everything else.
	Explicit string
	// Edition names the Visual Studio release directory, e.g. "2022".
	Edition string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Resolve returns the installation root: the explicit value, then EnvHostDir,
// then Documents\Visual Studio <edition> where the platform has one.
func Resolve(opts Options) (string, error) {
	if explicit := strings.TrimSpace(opts.Explicit); explicit != "" {
		return expand(explicit)
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if fromEnv := strings.TrimSpace(getenv(EnvHostDir)); fromEnv != "" {
		return expand(fromEnv)
	}
	edition := strings.TrimSpace(opts.Edition)
	if edition == "" {
		edition = DefaultEdition
	}
	docs, err := documentsDir()
	if err != nil {
		if errors.Is(err, ErrUnsupportedPlatform) {
			return "", err
		}
		return "", fmt.Errorf(messages.HostDirDocumentsFmt, err)
	}
	return filepath.Join(docs, "Visual Studio "+edition), nil
}

// DestinationDir joins root with the visualizer subfolder.
// An empty subfolder means assets.Subfolder.
func DestinationDir(root string, subfolder string) (string, error) {
	sub := strings.TrimSpace(subfolder)
	if sub == "" {
		sub = assets.Subfolder
	}
	if !ValidSubfolder(sub) {
		return "", fmt.Errorf(messages.HostDirSubfolderInvalidFmt, subfolder)
	}
	return filepath.Join(root, sub), nil
}

// ValidSubfolder reports whether name is a single directory name.
func ValidSubfolder(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func expand(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf(messages.HostDirExpandFmt, path, err)
	}
	return filepath.Clean(expanded), nil
}
