package sandbox

import (
	"fmt"
	"strings"
)

// TruncationMarker is appended to any captured stream cut at the output
// ceiling.
const TruncationMarker = "\n... (truncated)\n"

// The coreutils timeout wrapper exits with 124 when the limit is hit; some
// images print a diagnostic instead. Either one identifies an inner
// timeout.
const (
	innerTimeoutExitCode = 124
	innerTimeoutSentinel = "Command terminated"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeCompleted means the sandboxed process exited on its own. The
	// exit status may still be non-zero; a crashing program is a normal
	// outcome of running untrusted code, not a service fault.
	OutcomeCompleted Outcome = iota
	// OutcomeInnerTimeout means the in-sandbox wrapper stopped the program
	// at the configured wall-clock limit.
	OutcomeInnerTimeout
	// OutcomeOuterTimeout means the supervisory deadline fired because the
	// container invocation itself hung.
	OutcomeOuterTimeout
)

// TimedOut reports whether the outcome is either timeout class. Both are
// reported to the caller identically; they differ only in logging.
func (o Outcome) TimedOut() bool {
	return o == OutcomeInnerTimeout || o == OutcomeOuterTimeout
}

// Result is the uniform, caller-facing shape of one execution. ExitCode is
// nil when the run produced no trustworthy exit status (both timeout
// classes). Results are returned once and never persisted.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode *int
	Outcome  Outcome
	Message  string
}

// Normalize interprets a raw container outcome into a Result, classifying
// timeouts and capping each stream independently at the configured ceiling.
func Normalize(raw RawOutcome, spec Spec) Result {
	stdout := truncate(raw.Stdout, spec.MaxOutputBytes)
	stderr := truncate(raw.Stderr, spec.MaxOutputBytes)

	if raw.OuterTimedOut || raw.InnerTimedOut {
		outcome := OutcomeInnerTimeout
		if raw.OuterTimedOut {
			outcome = OutcomeOuterTimeout
		}

		// The message cites the inner limit in both cases: from the
		// caller's side the submitted code ran out of time, regardless of
		// which timer caught it.
		return Result{
			Stdout:  stdout,
			Stderr:  stderr,
			Outcome: outcome,
			Message: fmt.Sprintf("Execution timed out after %d seconds.", spec.InnerTimeoutSec),
		}
	}

	exitCode := raw.ExitCode
	return Result{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: &exitCode,
		Outcome:  OutcomeCompleted,
	}
}

// truncate cuts s at limit bytes and appends the marker. The boundary
// depends only on the configured limit, never on content.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + TruncationMarker
}

// innerTimeoutSignaled recognizes the in-sandbox wrapper's characteristic
// timeout signal.
func innerTimeoutSignaled(exitCode int, stderr string) bool {
	return exitCode == innerTimeoutExitCode || strings.Contains(stderr, innerTimeoutSentinel)
}
