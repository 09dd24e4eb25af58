package deploy

import (
	"os"
	"sync"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
)

// testSystem provides a mock System for unit tests.
//
// Every method falls back to RealSystem when its Func field is nil, so tests can
// build fixtures under t.TempDir() and override only the operation they need to fail.
type testSystem struct {
	RealSystem

	StatFunc        func(name string) (os.FileInfo, error)
	ReadVersionFunc func(name string) (fileversion.Version, error)
	CopyFileFunc    func(src string, dst string) error
	RenameFunc      func(oldpath string, newpath string) error
	MkdirAllFunc    func(path string, perm os.FileMode) error

	mu      sync.Mutex
	removed []string
	renames int
}

func (s *testSystem) Stat(name string) (os.FileInfo, error) {
	if s.StatFunc != nil {
		return s.StatFunc(name)
	}
	return s.RealSystem.Stat(name)
}

func (s *testSystem) ReadVersion(name string) (fileversion.Version, error) {
	if s.ReadVersionFunc != nil {
		return s.ReadVersionFunc(name)
	}
	return s.RealSystem.ReadVersion(name)
}

func (s *testSystem) CopyFile(src string, dst string) error {
	if s.CopyFileFunc != nil {
		return s.CopyFileFunc(src, dst)
	}
	return s.RealSystem.CopyFile(src, dst)
}

func (s *testSystem) Rename(oldpath string, newpath string) error {
	s.mu.Lock()
	s.renames++
	s.mu.Unlock()
	if s.RenameFunc != nil {
		return s.RenameFunc(oldpath, newpath)
	}
	return s.RealSystem.Rename(oldpath, newpath)
}

func (s *testSystem) Remove(name string) error {
	s.mu.Lock()
	s.removed = append(s.removed, name)
	s.mu.Unlock()
	return s.RealSystem.Remove(name)
}

func (s *testSystem) MkdirAll(path string, perm os.FileMode) error {
	if s.MkdirAllFunc != nil {
		return s.MkdirAllFunc(path, perm)
	}
	return s.RealSystem.MkdirAll(path, perm)
}

func (s *testSystem) renameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renames
}

func (s *testSystem) removedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}
