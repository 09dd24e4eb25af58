// Package templates embeds the files written by `vizdeploy init`.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed vizdeploy.toml
var files embed.FS

// Read returns the embedded template at path.
func Read(path string) ([]byte, error) {
	return fs.ReadFile(files, path)
}
