package headerstage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/paulschiretz/pgl-headers/pkg/plog"
	"github.com/paulschiretz/pgl-headers/pkg/pool"
	"github.com/paulschiretz/pgl-headers/pkg/preflight"
)

// Status is the state of one staged header relative to its source.
type Status int

const (
	StatusSourceMissing Status = iota
	StatusNotStaged
	StatusStale
	StatusUpToDate
)

var statusToString = map[Status]string{
	StatusSourceMissing: "source-missing",
	StatusNotStaged:     "not-staged",
	StatusStale:         "stale",
	StatusUpToDate:      "up-to-date",
}

func (s Status) String() string {
	if str, ok := statusToString[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown_status(%d)", s)
}

// CheckResult reports on one table entry.
type CheckResult struct {
	Spec   CopySpec
	Status Status
	// DestinationErr is set when the destination directory would reject a copy.
	DestinationErr error
}

// NeedsStaging reports whether running the stager would change this entry.
func (r CheckResult) NeedsStaging() bool {
	return r.Status == StatusNotStaged || r.Status == StatusStale
}

// Checker compares staged headers with their sources without writing anything.
type Checker struct {
	table        []CopySpec
	workers      int
	ioBufferPool *pool.FixedBufferPool
}

// NewChecker creates a Checker for plan.Table.
func NewChecker(plan *Plan) *Checker {
	return &Checker{
		table:        plan.Table,
		workers:      plan.workers(),
		ioBufferPool: pool.NewFixedBuffer(plan.bufferSize()),
	}
}

// Check inspects every entry concurrently and returns the results in table
// order. Contents are compared by SHA-256; metadata is not compared.
func (c *Checker) Check(ctx context.Context, baseDir string) ([]CheckResult, error) {
	results := make([]CheckResult, len(c.table))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, spec := range c.table {
		g.Go(func() error {
			res, err := c.checkOne(gctx, spec, baseDir)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", spec.Label, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) checkOne(ctx context.Context, spec CopySpec, baseDir string) (CheckResult, error) {
	select {
	case <-ctx.Done():
		return CheckResult{}, ctx.Err()
	default:
	}

	absSrcPath := spec.SourcePath(baseDir)
	absTrgPath := spec.DestinationPath(baseDir)
	res := CheckResult{Spec: spec}
	res.DestinationErr = preflight.CheckDestinationDir(filepath.Dir(absTrgPath))

	srcInfo, err := os.Stat(absSrcPath)
	if err != nil {
		if isNotExist(err) {
			res.Status = StatusSourceMissing
			return res, nil
		}
		return res, fmt.Errorf("failed to stat source %s: %w", absSrcPath, err)
	}
	if srcInfo.IsDir() {
		return res, fmt.Errorf("source %s is a directory", absSrcPath)
	}

	trgInfo, err := os.Stat(absTrgPath)
	if err != nil {
		if isNotExist(err) {
			res.Status = StatusNotStaged
			return res, nil
		}
		return res, fmt.Errorf("failed to stat destination %s: %w", absTrgPath, err)
	}

	if trgInfo.IsDir() || trgInfo.Size() != srcInfo.Size() {
		res.Status = StatusStale
		return res, nil
	}

	srcSum, err := c.hashFile(absSrcPath)
	if err != nil {
		return res, err
	}
	trgSum, err := c.hashFile(absTrgPath)
	if err != nil {
		return res, err
	}
	if bytes.Equal(srcSum, trgSum) {
		res.Status = StatusUpToDate
	} else {
		res.Status = StatusStale
	}
	plog.Debug("CHECK", "file", spec.Label, "status", res.Status)
	return res, nil
}

func (c *Checker) hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := c.ioBufferPool.Get()
	defer c.ioBufferPool.Put(bufPtr)

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
