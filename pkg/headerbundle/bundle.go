// Package headerbundle packs staged headers into a single compressed tar
// archive so the external/ directory can be cached or shipped as one file.
package headerbundle

import (
	"archive/tar"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/paulschiretz/pgl-headers/pkg/headerstage"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
	"github.com/paulschiretz/pgl-headers/pkg/pool"
)

const defaultBufferSizeKB = 256

// Plan configures a Bundler.
type Plan struct {
	Format       Format
	Level        Level
	BufferSizeKB int
	DryRun       bool
}

// Bundler writes staged destinations into a tar.gz or tar.zst archive.
type Bundler struct {
	format       Format
	level        Level
	dryRun       bool
	ioBufferSize int
	ioBufferPool *pool.FixedBufferPool
}

// NewBundler creates a Bundler from plan.
func NewBundler(plan *Plan) *Bundler {
	sizeKB := plan.BufferSizeKB
	if sizeKB <= 0 {
		sizeKB = defaultBufferSizeKB
	}
	size := int64(sizeKB) * 1024
	return &Bundler{
		format:       plan.Format,
		level:        plan.Level,
		dryRun:       plan.DryRun,
		ioBufferSize: int(size),
		ioBufferPool: pool.NewFixedBuffer(size),
	}
}

// Bundle archives the destination of every table entry that exists below
// baseDir, in table order, and returns how many entries were written. Entry
// names are the slash-separated destination paths. The archive is written to
// a temp file next to absArchivePath and renamed into place.
func (b *Bundler) Bundle(ctx context.Context, baseDir string, table []headerstage.CopySpec, absArchivePath string) (n int, retErr error) {
	if b.format != TarGz && b.format != TarZst {
		return 0, fmt.Errorf("unsupported bundle format: %s", b.format)
	}

	if b.dryRun {
		for _, spec := range table {
			if _, err := os.Stat(spec.DestinationPath(baseDir)); err == nil {
				plog.Notice("[DRY RUN] ADD", "file", spec.Destination, "archive", absArchivePath)
				n++
			}
		}
		return n, nil
	}

	trgF, err := os.CreateTemp(filepath.Dir(absArchivePath), "pgl-headers-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp archive: %w", err)
	}
	tempTrgPath := trgF.Name()

	defer func() {
		if retErr != nil {
			trgF.Close()
			os.Remove(tempTrgPath)
		}
	}()

	n, err = b.writeArchive(ctx, trgF, baseDir, table)
	if err != nil {
		return 0, err
	}

	if err := trgF.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp archive: %w", err)
	}
	if err := os.Rename(tempTrgPath, absArchivePath); err != nil {
		return 0, fmt.Errorf("failed to rename temp archive to final path: %w", err)
	}

	plog.Notice("BUNDLE", "archive", absArchivePath, "entries", n, "format", b.format)
	return n, nil
}

func (b *Bundler) writeArchive(ctx context.Context, w io.Writer, baseDir string, table []headerstage.CopySpec) (n int, retErr error) {
	bufWriter := bufio.NewWriterSize(w, b.ioBufferSize)

	compressedWriter, err := b.newCompressedWriter(bufWriter)
	if err != nil {
		return 0, err
	}
	tarWriter := tar.NewWriter(compressedWriter)

	// Close order matters: tar trailer, then compressor footer, then flush.
	defer func() {
		if err := tarWriter.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("tar writer close failed: %w", err)
		}
		if err := compressedWriter.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("compressed writer close failed: %w", err)
		}
		if err := bufWriter.Flush(); err != nil && retErr == nil {
			retErr = fmt.Errorf("buffer flush failed: %w", err)
		}
	}()

	for _, spec := range table {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		added, err := b.addEntry(tarWriter, spec, baseDir)
		if err != nil {
			return n, fmt.Errorf("failed to add %s to bundle: %w", spec.Label, err)
		}
		if added {
			n++
		}
	}
	return n, nil
}

func (b *Bundler) newCompressedWriter(w io.Writer) (io.WriteCloser, error) {
	if b.format == TarZst {
		var encoderLevel zstd.EncoderLevel
		switch b.level {
		case Fastest:
			encoderLevel = zstd.SpeedFastest
		case Better:
			encoderLevel = zstd.SpeedBetterCompression
		case Best:
			encoderLevel = zstd.SpeedBestCompression
		default:
			encoderLevel = zstd.SpeedDefault
		}
		zstdWriter, err := zstd.NewWriter(w, zstd.WithEncoderLevel(encoderLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zstdWriter, nil
	}

	var lvl int
	switch b.level {
	case Fastest:
		lvl = pgzip.BestSpeed
	case Better:
		lvl = 6
	case Best:
		lvl = pgzip.BestCompression
	default:
		lvl = pgzip.DefaultCompression
	}
	pgzipWriter, err := pgzip.NewWriterLevel(w, lvl)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	return pgzipWriter, nil
}

// addEntry writes one staged file. A destination that was never staged is
// skipped and reported as not added.
func (b *Bundler) addEntry(tw *tar.Writer, spec headerstage.CopySpec, baseDir string) (bool, error) {
	absPath := spec.DestinationPath(baseDir)

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			plog.Debug("SKIP", "file", spec.Destination, "reason", "not staged")
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", absPath, err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("staged path %s is not a regular file", absPath)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return false, fmt.Errorf("failed to build tar header for %s: %w", absPath, err)
	}
	hdr.Name = spec.Destination

	f, err := os.Open(absPath)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", absPath, err)
	}
	defer f.Close()

	if err := tw.WriteHeader(hdr); err != nil {
		return false, fmt.Errorf("failed to write tar header for %s: %w", absPath, err)
	}

	bufPtr := b.ioBufferPool.Get()
	defer b.ioBufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(tw, f, *bufPtr); err != nil {
		return false, fmt.Errorf("failed to write %s into archive: %w", absPath, err)
	}
	return true, nil
}
