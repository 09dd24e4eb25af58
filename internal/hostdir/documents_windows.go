//go:build windows

package hostdir

import "golang.org/x/sys/windows"

func platformDocumentsDir() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Documents, windows.KF_FLAG_DEFAULT)
}
