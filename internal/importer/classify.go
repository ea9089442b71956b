package importer

import "strings"

// marker is the classification of one remote response body.
type marker int

const (
	markerStillRunning marker = iota
	markerCompleted
	markerWrongKey
	markerAlreadyRunning
	markerFailed
)

// classify maps a poll response body to a marker by substring matching,
// case-insensitively. The remote endpoint returns prose, not structured
// status, so ordering matters: completion wins over everything, then the
// fatal key error, then the benign "already running" notice, and only then
// the generic error words. Anything unrecognized means the job is still
// running.
func classify(body string) marker {
	b := strings.ToLower(body)
	switch {
	case strings.Contains(b, "import complete"):
		// Covers both "import complete" and "import completed".
		return markerCompleted
	case strings.Contains(b, "wrong key"):
		return markerWrongKey
	case strings.Contains(b, "already running"):
		return markerAlreadyRunning
	case strings.Contains(b, "error"), strings.Contains(b, "fail"):
		return markerFailed
	}
	return markerStillRunning
}
