// Package preflight provides read-only checks that report whether a
// destination directory can take staged files, without changing anything.
package preflight

import (
	"fmt"
	"os"
)

// CheckDestinationDir verifies that dir exists, is a directory and can be
// written to by the current user. Staging never creates the directory, so a
// missing one is reported here rather than failing mid-copy.
func CheckDestinationDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("destination directory does not exist: %s", dir)
	} else if err != nil {
		return fmt.Errorf("cannot access destination directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination path exists but is not a directory: %s", dir)
	}
	return platformCheckWritable(dir)
}
