//go:build !windows

package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformCheckWritable asks the kernel whether the real user may create
// entries in dir.
func platformCheckWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("destination directory is not writable: %s: %w", dir, err)
	}
	return nil
}
