package machine

// History is the broadcast history window used for hazard detection: a
// ring of the last executeLatency accepted instructions' validity and
// context id. A new instruction for a context must stall while any entry
// for the same context is still in the window, because the pipeline has
// not yet retired the conflicting update.
type History struct {
	entries []historyEntry
}

type historyEntry struct {
	valid   bool
	context int
}

// NewHistory creates a window covering `depth` in-flight instructions.
func NewHistory(depth int) *History {
	return &History{entries: make([]historyEntry, depth)}
}

// Shift ages the window by one cycle, shifting in an invalid slot. Call
// once per sampled cycle, before any hazard probe or Push.
func (h *History) Shift() {
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = historyEntry{}
}

// Push records an accepted instruction for a context in the slot shifted
// in this cycle. At most one instruction is accepted per cycle, so Push
// never overwrites a valid entry.
func (h *History) Push(context int) {
	h.entries[0] = historyEntry{valid: true, context: context}
}

// HasHazard reports whether any in-flight instruction targets the
// context. This is the AskWrite/AskRead combinational probe.
func (h *History) HasHazard(context int) bool {
	for _, e := range h.entries {
		if e.valid && e.context == context {
			return true
		}
	}
	return false
}

// Depth returns the window length.
func (h *History) Depth() int {
	return len(h.entries)
}
