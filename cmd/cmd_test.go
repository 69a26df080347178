package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulschiretz/pgl-headers/cmd"
	"github.com/paulschiretz/pgl-headers/pkg/config"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

func setupCheckout(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "external"), 0755); err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		p := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func quietLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var logBuf bytes.Buffer
	plog.SetOutput(&logBuf)
	t.Cleanup(func() {
		plog.SetOutput(os.Stderr)
		plog.SetLevel(plog.LevelInfo)
	})
	return &logBuf
}

func TestRunStage(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, map[string]string{
		"external/src/stb/stb_image.h": "X",
	})

	var out bytes.Buffer
	if err := cmd.RunStage(context.Background(), map[string]interface{}{"base": base}, &out); err != nil {
		t.Fatalf("RunStage failed: %v", err)
	}
	if out.String() != "Copied stb_image.h\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	b, err := os.ReadFile(filepath.Join(base, "external", "stb_image.h"))
	if err != nil || string(b) != "X" {
		t.Errorf("expected staged content X, got %q (%v)", b, err)
	}
}

func TestRunStage_ConfigTable(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, map[string]string{
		"external/src/glm/glm.hpp":     "glm",
		"external/src/stb/stb_image.h": "img",
	})
	cfgJSON := `{"headers": [{"source": "external/src/glm/glm.hpp", "destination": "external/glm.hpp", "label": "glm.hpp"}]}`
	if err := os.WriteFile(filepath.Join(base, config.ConfigFileName), []byte(cfgJSON), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := cmd.RunStage(context.Background(), map[string]interface{}{"base": base}, &out); err != nil {
		t.Fatalf("RunStage failed: %v", err)
	}
	if out.String() != "Copied glm.hpp\n" {
		t.Errorf("expected only the configured header, got %q", out.String())
	}
}

func TestRunStage_InvalidConfig(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, nil)
	cfgJSON := `{"headers": [{"source": "/etc/hosts", "destination": "external/hosts", "label": "hosts"}]}`
	if err := os.WriteFile(filepath.Join(base, config.ConfigFileName), []byte(cfgJSON), 0644); err != nil {
		t.Fatal(err)
	}

	err := cmd.RunStage(context.Background(), map[string]interface{}{"base": base}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if _, statErr := os.Stat(filepath.Join(base, "external", "hosts")); !os.IsNotExist(statErr) {
		t.Error("nothing should be staged from an invalid config")
	}
}

func TestRunCheck(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, map[string]string{
		"external/src/stb/stb_image.h": "img",
	})
	flagMap := map[string]interface{}{"base": base}

	var out bytes.Buffer
	err := cmd.RunCheck(context.Background(), flagMap, &out)
	if err == nil {
		t.Fatal("expected check to fail before staging")
	}
	if !strings.Contains(out.String(), "stb_image.h") || !strings.Contains(out.String(), "not-staged") {
		t.Errorf("unexpected check output: %q", out.String())
	}

	if err := cmd.RunStage(context.Background(), flagMap, &bytes.Buffer{}); err != nil {
		t.Fatalf("RunStage failed: %v", err)
	}

	out.Reset()
	if err := cmd.RunCheck(context.Background(), flagMap, &out); err != nil {
		t.Fatalf("expected check to pass after staging, got %v\n%s", err, out.String())
	}
	if strings.Count(out.String(), "\n") != 3 {
		t.Errorf("expected one line per header, got %q", out.String())
	}
}

func TestRunBundle(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, map[string]string{
		"external/stb_image.h": "img",
	})

	var out bytes.Buffer
	flagMap := map[string]interface{}{"base": base, "format": "tar.gz"}
	if err := cmd.RunBundle(context.Background(), flagMap, &out); err != nil {
		t.Fatalf("RunBundle failed: %v", err)
	}

	archivePath := filepath.Join(base, "external", "headers.tar.gz")
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("expected archive at %s: %v", archivePath, err)
	}
	if !strings.Contains(out.String(), "Bundled 1 header(s)") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunBundle_InvalidFormat(t *testing.T) {
	quietLogs(t)
	base := setupCheckout(t, nil)
	err := cmd.RunBundle(context.Background(), map[string]interface{}{"base": base, "format": "zip"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error for an invalid format")
	}
}

func TestRunInit(t *testing.T) {
	quietLogs(t)
	base := t.TempDir()
	flagMap := map[string]interface{}{"base": base}

	if err := cmd.RunInit(context.Background(), flagMap); err != nil {
		t.Fatalf("RunInit failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, config.ConfigFileName)); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if err := cmd.RunInit(context.Background(), flagMap); err == nil {
		t.Error("expected second init without -force to fail")
	}

	flagMap["force"] = true
	if err := cmd.RunInit(context.Background(), flagMap); err != nil {
		t.Errorf("forced init failed: %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := cmd.RunVersion(&out, "PGL-Headers", "1.2.3"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "PGL-Headers version 1.2.3\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
