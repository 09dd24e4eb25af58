// Package doctor runs health checks for a visualizer deployment.
package doctor

// Status is the outcome of a single check.
type Status int

// Check statuses, in increasing severity.
const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Result is one line of doctor output.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

// HasFailure reports whether any result failed.
func HasFailure(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}
