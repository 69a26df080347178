package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckDestinationDir(t *testing.T) {
	tempDir := t.TempDir()

	filePath := filepath.Join(tempDir, "stb_image.h")
	if err := os.WriteFile(filePath, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	testCases := []struct {
		name        string
		path        string
		expectError bool
		errContains string
	}{
		{"Existing writable directory", tempDir, false, ""},
		{"Missing directory", filepath.Join(tempDir, "missing"), true, "does not exist"},
		{"Path is a file", filePath, true, "not a directory"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckDestinationDir(tc.path)
			if tc.expectError {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				if !strings.Contains(err.Error(), tc.errContains) {
					t.Errorf("expected error containing %q, got %v", tc.errContains, err)
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
