package deploy

import (
	"os"

	"github.com/otiai10/copy"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
)

// System abstracts filesystem operations needed by the deployer.
// Tests substitute it to inject failures that are hard to provoke on a real disk.
type System interface {
	Stat(name string) (os.FileInfo, error)
	ReadVersion(name string) (fileversion.Version, error)
	CopyFile(src string, dst string) error
	Rename(oldpath string, newpath string) error
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadVersion reads the PE file version of the named file.
func (RealSystem) ReadVersion(name string) (fileversion.Version, error) {
	return fileversion.Read(name)
}

// CopyFile copies src to dst, syncing the new file to disk and keeping the source timestamps.
// A symlinked src is copied as the file it points to.
func (RealSystem) CopyFile(src string, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Deep
		},
		Sync:          true,
		PreserveTimes: true,
	})
}

// Rename renames (moves) oldpath to newpath, replacing newpath if it exists.
func (RealSystem) Rename(oldpath string, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Remove removes the named file.
func (RealSystem) Remove(name string) error {
	return os.Remove(name)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
