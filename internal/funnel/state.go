package funnel

import (
	"github.com/hdrscope/hdrscope/internal/normalize"
	"github.com/hdrscope/hdrscope/internal/observation"
)

// State is owned by a single funnel run and thrown away afterwards.
type State struct {
	// StandardCounts tallies standard header names by lower-cased name.
	StandardCounts map[string]int
	// FirstSeen holds the first value observed per lower-cased header name.
	FirstSeen map[string]string
}

func NewState() *State {
	return &State{
		StandardCounts: map[string]int{},
		FirstSeen:      map[string]string{},
	}
}

// consistent applies first-write-wins: the first value recorded for a name
// is authoritative for the rest of the run.
func (st *State) consistent(h observation.Header) bool {
	key := normalize.HeaderName(h.Name)
	if first, ok := st.FirstSeen[key]; ok {
		return first == h.Value
	}
	st.FirstSeen[key] = h.Value
	return true
}
