package metrics

import "time"

// ResultLabel enumerates operation outcomes for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultAccepted ResultLabel = "accepted"
	ResultRejected ResultLabel = "rejected"
)

// ScanOutcome tells whether a scan ran to the end of its text.
type ScanOutcome string

const (
	ScanCompleted ScanOutcome = "completed"
	ScanCanceled  ScanOutcome = "canceled"
)

// Recorder defines observability hooks for link formatting, parsing and
// scanning. Implementations may forward to Prometheus or anything else.
type Recorder interface {
	// IncCandidate counts one pattern match and whether the parser accepted it.
	IncCandidate(result ResultLabel)
	// IncParseError counts parser rejections by error kind.
	IncParseError(kind string)
	// ObserveScanDuration records how long a scan of one source took.
	ObserveScanDuration(source string, d time.Duration)
	// IncScanOutcome counts finished scans.
	IncScanOutcome(outcome ScanOutcome)
	// IncFormat counts formatting attempts.
	IncFormat(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncCandidate(ResultLabel)                 {}
func (NoopRecorder) IncParseError(string)                     {}
func (NoopRecorder) ObserveScanDuration(string, time.Duration) {}
func (NoopRecorder) IncScanOutcome(ScanOutcome)               {}
func (NoopRecorder) IncFormat(ResultLabel)                    {}
