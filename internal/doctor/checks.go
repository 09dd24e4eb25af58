package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conn-castle/vizdeploy/internal/config"
	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/fileversion"
	"github.com/conn-castle/vizdeploy/internal/hostdir"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

var (
	statFunc        = os.Stat
	readVersionFunc = fileversion.Read
	loadConfigFunc  = config.Load
	resolveHostFunc = hostdir.Resolve
)

// CheckConfig loads the config at path. A missing file is fine and yields defaults.
func CheckConfig(path string) ([]Result, *config.Config) {
	cfg, found, err := loadConfigFunc(path)
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameConfig,
			Message:        fmt.Sprintf(messages.DoctorConfigLoadFailedFmt, err),
			Recommendation: messages.DoctorConfigLoadRecommend,
		}}, nil
	}
	msg := fmt.Sprintf(messages.DoctorConfigLoadedFmt, path)
	if !found {
		msg = fmt.Sprintf(messages.DoctorConfigDefaultsFmt, path)
	}
	return []Result{{Status: StatusOK, CheckName: messages.DoctorCheckNameConfig, Message: msg}}, cfg
}

// CheckHostDir resolves the installation root and verifies it is a directory.
// The returned root is empty when it could not be resolved.
func CheckHostDir(opts hostdir.Options) ([]Result, string) {
	root, err := resolveHostFunc(opts)
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameHostDir,
			Message:        fmt.Sprintf(messages.DoctorHostDirFailedFmt, err),
			Recommendation: messages.DoctorHostDirRecommend,
		}}, ""
	}
	info, err := statFunc(root)
	switch {
	case err != nil:
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameHostDir,
			Message:        fmt.Sprintf(messages.DoctorHostDirMissingFmt, root),
			Recommendation: messages.DoctorHostDirMissingRecommend,
		}}, root
	case !info.IsDir():
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameHostDir,
			Message:        fmt.Sprintf(messages.DoctorHostDirNotDirFmt, root),
			Recommendation: messages.DoctorHostDirRecommend,
		}}, root
	}
	return []Result{{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameHostDir,
		Message:   fmt.Sprintf(messages.DoctorHostDirResolvedFmt, root),
	}}, root
}

// CheckDestination verifies the visualizers directory. A missing directory is
// a failure unless the deploy is allowed to create it.
func CheckDestination(dir string, createDir bool) []Result {
	info, err := statFunc(dir)
	if err == nil {
		if !info.IsDir() {
			return []Result{{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameDestination,
				Message:        fmt.Sprintf(messages.DoctorDestinationNotDirFmt, dir),
				Recommendation: messages.DoctorDestinationNotDirRecommend,
			}}
		}
		return []Result{{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameDestination,
			Message:   fmt.Sprintf(messages.DoctorDestinationExistsFmt, dir),
		}}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameDestination,
			Message:        fmt.Sprintf(messages.DoctorDestinationUnreadableFmt, dir, err),
			Recommendation: messages.DoctorDestinationUnreadableRecommend,
		}}
	}
	if createDir {
		return []Result{{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameDestination,
			Message:   fmt.Sprintf(messages.DoctorDestinationWillCreateFmt, dir),
		}}
	}
	return []Result{{
		Status:         StatusFail,
		CheckName:      messages.DoctorCheckNameDestination,
		Message:        fmt.Sprintf(messages.DoctorDestinationMissingFmt, dir),
		Recommendation: messages.DoctorDestinationMissingRecommend,
	}}
}

// CheckSources verifies every bundled file exists and carries a version.
func CheckSources(sourceDir string, files []string) []Result {
	results := make([]Result, 0, len(files))
	for _, name := range files {
		path := filepath.Join(sourceDir, name)
		v, err := readVersionFunc(path)
		switch {
		case err == nil:
			results = append(results, Result{
				Status:    StatusOK,
				CheckName: messages.DoctorCheckNameSource,
				Message:   fmt.Sprintf(messages.DoctorSourceVersionFmt, name, v),
			})
		case errors.Is(err, fs.ErrNotExist):
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameSource,
				Message:        fmt.Sprintf(messages.DoctorSourceMissingFmt, name, sourceDir),
				Recommendation: messages.DoctorSourceMissingRecommend,
			})
		case errors.Is(err, fileversion.ErrNoVersionResource):
			results = append(results, Result{
				Status:    StatusWarn,
				CheckName: messages.DoctorCheckNameSource,
				Message:   fmt.Sprintf(messages.DoctorSourceNoVersionFmt, name),
			})
		default:
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameSource,
				Message:        fmt.Sprintf(messages.DoctorSourceUnreadableFmt, name, err),
				Recommendation: messages.DoctorSourceMissingRecommend,
			})
		}
	}
	return results
}

// CheckInstalled compares each installed file with its bundled counterpart
// using the same gate as the deployer.
func CheckInstalled(sourceDir string, destDir string, files []string) []Result {
	var results []Result
	for _, name := range files {
		dst := filepath.Join(destDir, name)
		if _, err := statFunc(dst); errors.Is(err, fs.ErrNotExist) {
			results = append(results, Result{
				Status:    StatusOK,
				CheckName: messages.DoctorCheckNameInstalled,
				Message:   fmt.Sprintf(messages.DoctorInstalledNotInstalledFmt, name),
			})
			continue
		}
		installed, err := readVersionFunc(dst)
		if err != nil {
			results = append(results, Result{
				Status:         StatusWarn,
				CheckName:      messages.DoctorCheckNameInstalled,
				Message:        fmt.Sprintf(messages.DoctorInstalledNoVersionFmt, name, err),
				Recommendation: messages.DoctorInstalledNoVersionRecommend,
			})
			continue
		}
		bundled, err := readVersionFunc(filepath.Join(sourceDir, name))
		if err != nil {
			// Reported by CheckSources.
			continue
		}
		msg := fmt.Sprintf(messages.DoctorInstalledUpToDateFmt, name, installed)
		switch {
		case deploy.Decide(bundled, &installed):
			msg = fmt.Sprintf(messages.DoctorInstalledPendingFmt, name, installed, bundled)
		case installed.Compare(bundled) > 0 && installed.Short() != bundled.Short():
			msg = fmt.Sprintf(messages.DoctorInstalledNewerFmt, name, installed, bundled)
		}
		results = append(results, Result{Status: StatusOK, CheckName: messages.DoctorCheckNameInstalled, Message: msg})
	}
	return results
}
