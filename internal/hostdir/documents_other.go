//go:build !windows

package hostdir

func platformDocumentsDir() (string, error) {
	return "", ErrUnsupportedPlatform
}
