package itmd

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one document is parsed at a time.
	MinWorkers = 1

	// MaxWorkers caps concurrent parses. Parsing is CPU bound and memory
	// grows with each document held in flight.
	MaxWorkers = 16
)

// ResolveWorkers determines how many documents to parse concurrently.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in
// containers). A single Parser is shared by all workers.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxWorkers)
}
