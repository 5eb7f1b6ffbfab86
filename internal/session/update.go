package session

import (
	"slices"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
)

// reconciler tracks the last emitted attribute values for one session
// and reduces each candidate update to the fields that actually
// changed. Callers must not re-emit attributes whose value is
// unchanged; equality is by value.
//
// Not safe for concurrent use; the owning session serialises access.
type reconciler struct {
	state      device.PowerState
	stateKnown bool

	source      string
	sourceKnown bool

	sourceList []string
}

// diff returns the subset of the candidate update that differs from
// the last emitted values, and whether anything changed. Emitted
// fields become the new baseline.
func (r *reconciler) diff(candidate Update) (Update, bool) {
	var out Update
	changed := false

	if candidate.State != nil {
		if !r.stateKnown || r.state != *candidate.State {
			r.state = *candidate.State
			r.stateKnown = true
			state := r.state
			out.State = &state
			changed = true
		}
	}

	if candidate.Source != nil {
		if !r.sourceKnown || r.source != *candidate.Source {
			r.source = *candidate.Source
			r.sourceKnown = true
			source := r.source
			out.Source = &source
			changed = true
		}
	}

	if candidate.SourceList != nil {
		if !slices.Equal(r.sourceList, candidate.SourceList) {
			r.sourceList = slices.Clone(candidate.SourceList)
			out.SourceList = slices.Clone(candidate.SourceList)
			changed = true
		}
	}

	return out, changed
}
