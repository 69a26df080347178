// Package headerstage copies vendored header-only libraries from a bootstrap
// checkout (external/src/...) into the flat external/ directory the build
// includes from.
package headerstage

import "path/filepath"

// CopySpec describes one header to stage. Source and Destination are
// slash-separated paths relative to the base directory.
type CopySpec struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Label       string `json:"label"`
}

// SourcePath returns the OS-native source path below baseDir.
func (c CopySpec) SourcePath(baseDir string) string {
	return filepath.Join(baseDir, filepath.FromSlash(c.Source))
}

// DestinationPath returns the OS-native destination path below baseDir.
func (c CopySpec) DestinationPath(baseDir string) string {
	return filepath.Join(baseDir, filepath.FromSlash(c.Destination))
}

var builtinTable = [...]CopySpec{
	{
		Source:      "external/src/tiny_obj_loader/tiny_obj_loader.h",
		Destination: "external/tiny_obj_loader.h",
		Label:       "tiny_obj_loader.h",
	},
	{
		Source:      "external/src/stb/stb_image.h",
		Destination: "external/stb_image.h",
		Label:       "stb_image.h",
	},
	{
		Source:      "external/src/stb/stb_image_write.h",
		Destination: "external/stb_image_write.h",
		Label:       "stb_image_write.h",
	},
}

// DefaultTable returns a copy of the built-in header table in staging order.
func DefaultTable() []CopySpec {
	table := make([]CopySpec, len(builtinTable))
	copy(table, builtinTable[:])
	return table
}
