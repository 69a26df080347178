package headerstage

// Plan configures a Stager or Checker for one run.
type Plan struct {
	Table []CopySpec

	// BufferSizeKB is the copy buffer size. Zero selects the default.
	BufferSizeKB int
	// Workers bounds concurrent hashing in Check. Zero selects the default.
	Workers int

	// Global Flags
	DryRun  bool
	Metrics bool
}

const (
	defaultBufferSizeKB = 256
	defaultCheckWorkers = 4
)

func (p Plan) bufferSize() int64 {
	if p.BufferSizeKB <= 0 {
		return defaultBufferSizeKB * 1024
	}
	return int64(p.BufferSizeKB) * 1024
}

func (p Plan) workers() int {
	if p.Workers <= 0 {
		return defaultCheckWorkers
	}
	return p.Workers
}
