package instrumentation

import "sync"

// Cardinality management for metric labels.
//
// Tool names arrive from clients, so a misbehaving client could mint a new
// label value per request. Only names registered through RegisterToolNames are
// recorded verbatim; everything else collapses to "unknown".

var (
	knownToolsMu sync.RWMutex
	knownTools   = map[string]struct{}{}
)

// RegisterToolNames marks tool names as safe metric label values.
// The tool catalog calls this once at startup.
func RegisterToolNames(names ...string) {
	knownToolsMu.Lock()
	defer knownToolsMu.Unlock()
	for _, name := range names {
		if name != "" {
			knownTools[name] = struct{}{}
		}
	}
}

// NormalizeToolName returns name if it was registered, otherwise "unknown".
//
// Example:
//
//	RegisterToolNames("get_today")
//	NormalizeToolName("get_today")   // "get_today"
//	NormalizeToolName("drop_tables") // "unknown"
func NormalizeToolName(name string) string {
	knownToolsMu.RLock()
	defer knownToolsMu.RUnlock()
	if _, ok := knownTools[name]; ok {
		return name
	}
	return StatusUnknown
}

// Automation modes used as metric and span label values.
const (
	ModeStatement = "statement"
	ModeProgram   = "program"
	ModeURL       = "url"
)
