//go:build windows

package preflight

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// platformCheckWritable re-reads the attributes through the Win32 API. The
// read-only attribute is not honoured on directories, so only a directory
// that cannot be queried is rejected here; ACL failures surface at copy time.
func platformCheckWritable(dir string) error {
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return fmt.Errorf("invalid destination path %s: %w", dir, err)
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("cannot query destination directory %s: %w", dir, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_DIRECTORY == 0 {
		return fmt.Errorf("destination path exists but is not a directory: %s", dir)
	}
	return nil
}
