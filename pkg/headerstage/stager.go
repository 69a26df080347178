package headerstage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/paulschiretz/pgl-headers/pkg/plog"
	"github.com/paulschiretz/pgl-headers/pkg/pool"
)

// preservedModeBits are the mode bits carried from source to destination.
const preservedModeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Stager copies every header in its table whose source exists and writes one
// confirmation line per copied file.
type Stager struct {
	table        []CopySpec
	out          io.Writer
	dryRun       bool
	ioBufferPool *pool.FixedBufferPool
	metrics      Metrics
}

// NewStager creates a Stager. Confirmation lines are written to out.
func NewStager(plan *Plan, out io.Writer) *Stager {
	var m Metrics
	if plan.Metrics {
		m = &StageMetrics{}
	} else {
		m = &NoopMetrics{}
	}
	return &Stager{
		table:        plan.Table,
		out:          out,
		dryRun:       plan.DryRun,
		ioBufferPool: pool.NewFixedBuffer(plan.bufferSize()),
		metrics:      m,
	}
}

// StageAll processes the table in order against baseDir. Entries whose source
// does not exist are skipped silently. The first failure aborts the run;
// files staged before it are left in place.
func (s *Stager) StageAll(ctx context.Context, baseDir string) error {
	for _, spec := range s.table {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.stage(spec, baseDir); err != nil {
			return fmt.Errorf("failed to stage %s: %w", spec.Label, err)
		}
	}
	s.metrics.LogSummary("SUM")
	return nil
}

func (s *Stager) stage(spec CopySpec, baseDir string) error {
	absSrcPath := spec.SourcePath(baseDir)
	absTrgPath := spec.DestinationPath(baseDir)

	info, err := os.Stat(absSrcPath)
	if err != nil {
		if isNotExist(err) {
			plog.Debug("SKIP", "file", spec.Label, "reason", "source missing", "source", absSrcPath)
			s.metrics.AddFilesSkipped(1)
			return nil
		}
		return fmt.Errorf("failed to stat source %s: %w", absSrcPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", absSrcPath)
	}

	if s.dryRun {
		plog.Notice("[DRY RUN] COPY", "source", absSrcPath, "target", absTrgPath)
		return nil
	}

	if err := s.copyFile(absSrcPath, absTrgPath, info); err != nil {
		return err
	}
	s.metrics.AddFilesCopied(1)
	plog.Notice("COPY", "source", absSrcPath, "target", absTrgPath, "size", info.Size())

	if _, err := fmt.Fprintf(s.out, "Copied %s\n", spec.Label); err != nil {
		return fmt.Errorf("failed to write confirmation: %w", err)
	}
	return nil
}

// copyFile writes the source bytes to a temp file next to absTrgPath, applies
// the source mode and modification time, then renames it over absTrgPath.
// The destination directory must already exist.
func (s *Stager) copyFile(absSrcPath, absTrgPath string, info os.FileInfo) error {
	in, err := os.Open(absSrcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", absSrcPath, err)
	}
	defer in.Close()

	absTrgDir := filepath.Dir(absTrgPath)
	out, err := os.CreateTemp(absTrgDir, "pgl-headers-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", absTrgDir, err)
	}

	absTempPath := out.Name()
	// Cleared after a successful rename.
	defer func() {
		if absTempPath != "" {
			os.Remove(absTempPath)
		}
	}()

	bufPtr := s.ioBufferPool.Get()
	defer s.ioBufferPool.Put(bufPtr)

	bytesWritten, err := io.CopyBuffer(out, in, *bufPtr)
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to copy content from %s to %s: %w", absSrcPath, absTempPath, err)
	}
	s.metrics.AddBytesWritten(bytesWritten)

	if err := out.Chmod(info.Mode() & preservedModeBits); err != nil {
		out.Close()
		return fmt.Errorf("failed to set permissions on temporary file %s: %w", absTempPath, err)
	}

	// Close before Chtimes: flushing can touch the modification time.
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %s: %w", absTempPath, err)
	}

	if err := os.Chtimes(absTempPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set timestamps on %s: %w", absTempPath, err)
	}

	if err := os.Rename(absTempPath, absTrgPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", absTrgPath, err)
	}
	absTempPath = ""
	return nil
}

// isNotExist treats a missing path and a path running through a regular file
// the same way: there is nothing to copy.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
